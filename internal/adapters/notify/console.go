package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyrec/internal/domain"
)

// Console implementa ports.Notifier imprimiendo una tabla de
// recomendaciones. Se usa en el modo one-shot del CLI.
type Console struct {
	out io.Writer
	now func() time.Time
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, now: time.Now}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, now: time.Now}
}

// Notify imprime las recomendaciones ya ordenadas por score.
func (c *Console) Notify(_ context.Context, recs []domain.Recommendation) error {
	if len(recs) == 0 {
		fmt.Fprintf(c.out, "[%s] no recommendations (is the market index empty?)\n",
			c.now().Format("15:04:05"))
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s] top %d recommended markets\n",
		c.now().Format("15:04:05"), len(recs))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Category", "Score", "Ends", "Why")

	for i, rec := range recs {
		table.Append(
			fmt.Sprintf("%d", i+1),
			marketLabel(rec),
			rec.Category,
			fmt.Sprintf("%.3f", rec.Score),
			endLabel(rec, c.now()),
			strings.Join(rec.Reasons, "; "),
		)
	}

	table.Render()
	return nil
}

// marketLabel devuelve la pregunta truncada, con el conditionID como
// fallback si el mercado no trae pregunta.
func marketLabel(rec domain.Recommendation) string {
	q := rec.Question
	if q == "" {
		q = rec.ConditionID
	}
	return truncate(q, 45)
}

// endLabel formatea los días hasta resolución.
func endLabel(rec domain.Recommendation, now time.Time) string {
	if rec.EndDate == nil {
		return "-"
	}
	days := int(rec.EndDate.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return fmt.Sprintf("%dd", days)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
