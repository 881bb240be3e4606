package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// readClipboard is replaced in tests.
var readClipboard = clipboard.ReadAll

// readListing returns the listing text from the --input source or the
// system clipboard.
func readListing(cmd *cobra.Command, input string) (string, error) {
	switch input {
	case "":
		text, err := readClipboard()
		if err != nil {
			return "", fmt.Errorf("read clipboard: %w", err)
		}
		return text, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(input)
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}
}
