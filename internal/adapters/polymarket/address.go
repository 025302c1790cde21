package polymarket

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress convierte una dirección a su forma canónica con
// checksum EIP-55. Los nombres ENS (*.eth) pasan sin resolver: la
// resolución necesitaría un RPC que este servicio no lleva.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("polymarket.NormalizeAddress: empty address")
	}
	if strings.HasSuffix(addr, ".eth") {
		return addr, nil
	}
	if !common.IsHexAddress(addr) {
		return "", fmt.Errorf("polymarket.NormalizeAddress: invalid address %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}
