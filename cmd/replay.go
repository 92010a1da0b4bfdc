package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lilly/internal/reconstruct"
)

var (
	replayFinal bool
	replayName  string
)

var replayCmd = &cobra.Command{
	Use:   "replay <file|->",
	Short: "Reconstruct text from a captured backend stream",
	Long: `Feed a captured backend transcript (one transport line per line, raw text or
"data:" framed JSON) through the reconstruction pipeline and print the result.
By default incremental chunks are written as they are released; --final prints
only the normalized text.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayFinal, "final", false, "print only the normalized final text")
	replayCmd.Flags().StringVar(&replayName, "name", "Lilly", "assistant name used in diagnostics")
}

func runReplay(cmd *cobra.Command, args []string) error {
	in, err := openTranscript(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return replay(ctx, in, cmd.OutOrStdout(), replayName, replayFinal)
}

func openTranscript(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return f, nil
}

// replay 重建一段传输记录并写到 out
func replay(ctx context.Context, in io.ReadCloser, out io.Writer, name string, final bool) error {
	stream := reconstruct.NewStream(reconstruct.NewLineSource(in), nil, name)
	defer stream.Close()

	if final {
		text, err := stream.Collect(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, text)
		return err
	}

	for chunk, err := range stream.Chunks(ctx) {
		if err != nil {
			return err
		}
		if _, err := out.Write(chunk); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(out)
	return err
}
