// Command pcapsight decodes a capture file and prints its packet summary
// as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/packetsprout/pcapsight"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootFlags struct {
	inputFile string
	pretty    bool
	verbose   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "pcapsight",
		Short: "Decode a PCAP, PCAP-NG, or raw capture buffer to JSON",
		Long: `pcapsight reads a capture file from disk and prints the decoded packet
summary as JSON: one entry per packet, plus any warnings or errors
encountered along the way.

It accepts legacy PCAP files, PCAP-NG files, and anything else — an
unrecognized buffer is reported back as a single raw payload rather than
rejected.`,
		Example: `  # Decode a capture and print compact JSON
  pcapsight --input capture.pcap

  # Decode a PCAP-NG capture with indented output
  pcapsight --input capture.pcapng --pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags)
		},
	}

	cmd.Flags().StringVar(&flags.inputFile, "input", "", "Capture file to decode (required)")
	cmd.MarkFlagRequired("input")
	cmd.Flags().BoolVar(&flags.pretty, "pretty", false, "Indent the JSON output")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Enable decoder diagnostic logging on stderr")

	return cmd
}

func run(flags *rootFlags) error {
	if flags.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		pcapsight.SetLogger(logger)
		defer logger.Sync()
	}

	data, err := os.ReadFile(flags.inputFile)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	raw := pcapsight.ProcessPacket(data)
	if !flags.pretty {
		fmt.Fprintln(os.Stdout, raw)
		return nil
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		// ProcessPacket always emits valid JSON; this would mean a bug
		// there, not bad input. Fall back to the compact form.
		fmt.Fprintln(os.Stdout, raw)
		return nil
	}
	pretty, err := json.MarshalIndent(generic, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, raw)
		return nil
	}
	fmt.Fprintln(os.Stdout, string(pretty))
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
