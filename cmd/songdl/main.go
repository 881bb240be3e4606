// Command songdl turns an album track listing into downloaded audio files.
//
// The listing is read from the clipboard unless --input names a file (or -
// for stdin). Its tracks are saved as a JSON manifest under the read
// directory and then downloaded into the save directory.
//
//	songdl                     # clipboard → manifest → download
//	songdl extract --print     # clipboard → manifest only
//	songdl batch -t target     # every manifest in target → download
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Download cancelled.")
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
