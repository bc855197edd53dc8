package main

import (
	"fmt"
	"io"
	"os"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/weburl"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/urltools"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "urlctl",
		Short:         "Parse, resolve and inspect URLs the way a browser does",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)

	rootCmd.AddCommand(
		parseCmd(),
		resolveCmd(),
		paramsCmd(),
		canParseCmd(),
	)
	return rootCmd
}

func parseCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "parse URL",
		Short: "Print every component of a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := urltools.Parse(args[0], base)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), urltools.Describe(u))
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "", "Base URL for relative input")
	return cmd
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve BASE REF",
		Short: "Resolve a reference against a base URL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := urltools.Parse(args[1], args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.Href())
			return nil
		},
	}
}

func paramsCmd() *cobra.Command {
	var sorted bool
	cmd := &cobra.Command{
		Use:   "params QUERY",
		Short: "Decode a query string into ordered name/value pairs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sp := weburl.NewSearchParams(args[0])
			if sorted {
				sp.Sort()
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"pairs":      sp.Pairs(),
				"serialized": sp.String(),
			})
		},
	}
	cmd.Flags().BoolVarP(&sorted, "sort", "s", false, "Stable-sort pairs by name")
	return cmd
}

func canParseCmd() *cobra.Command {
	var base string
	cmd := &cobra.Command{
		Use:   "can-parse URL",
		Short: "Exit non-zero when URL does not parse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := urltools.Parse(args[0], base); err != nil {
				return fmt.Errorf("%q does not parse: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&base, "base", "b", "", "Base URL for relative input")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
