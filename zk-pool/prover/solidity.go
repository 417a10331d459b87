package prover

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const solidityFile = "PoolVerifier.sol"

// ExportSolidity writes a Solidity verifier for the reference keys into dir
// and returns the file path.
func (rs *ReferenceSystem) ExportSolidity(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := rs.vk.ExportSolidity(&buf); err != nil {
		return "", fmt.Errorf("export solidity: %w", err)
	}
	path := filepath.Join(dir, solidityFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}
