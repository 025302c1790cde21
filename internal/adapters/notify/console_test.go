package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/polyrec/internal/adapters/notify"
	"github.com/alejandrodnm/polyrec/internal/domain"
)

func makeRec(question string, score float64, reasons ...string) domain.Recommendation {
	end := time.Now().AddDate(0, 0, 14)
	return domain.Recommendation{
		ConditionID: "0xtest",
		Question:    question,
		Category:    "Crypto",
		EndDate:     &end,
		Score:       score,
		Reasons:     reasons,
	}
}

func TestConsole_Notify_WithRecommendations(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	recs := []domain.Recommendation{
		makeRec("Will BTC hit 100k?", 0.612, "Tags you trade often", "High liquidity"),
		makeRec("Will ETH flip BTC?", 0.304),
	}

	err := n.Notify(context.Background(), recs)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Will BTC hit 100k?")
	assert.Contains(t, out, "Will ETH flip BTC?")
	assert.Contains(t, out, "0.612")
	assert.Contains(t, out, "Tags you trade often")
}

func TestConsole_Notify_EmptyList(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf)

	err := n.Notify(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "no recommendations")
}
