package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/duckfetch/internal/proxy"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// proxyCheckConcurrency bounds the number of endpoints probed at once.
const proxyCheckConcurrency = 8

// NewProxyCmd creates the proxy command group.
func NewProxyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Inspect proxy lists",
	}
	cmd.AddCommand(NewProxyCheckCmd())
	return cmd
}

// NewProxyCheckCmd creates the proxy check command.
func NewProxyCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe every endpoint of a proxy list",
		Long: `Check connects to every endpoint of a proxy list and verifies that it
speaks the protocol of its scheme: SOCKS5 method negotiation for socks5
endpoints, a CONNECT tunnel to the target for http and https endpoints.

No search request is sent.

Examples:
  duckfetch proxy check -x proxies.txt
  duckfetch proxy check -x proxies.txt --timeout 10s`,
		Args: cobra.NoArgs,
		RunE: runProxyCheckCmd,
	}

	cmd.Flags().StringP("proxies", "x", "",
		"Proxy list file (required)")
	cmd.Flags().Duration("timeout", proxy.DefaultCheckTimeout,
		"Timeout per endpoint")
	cmd.Flags().String("target", proxy.DefaultCheckTarget,
		"host:port requested through http CONNECT")
	_ = cmd.MarkFlagRequired("proxies") //nolint:errcheck // Flag is defined above

	return cmd
}

// runProxyCheckCmd executes the proxy check command.
func runProxyCheckCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	path, err := flags.GetString("proxies")
	if err != nil {
		return err
	}
	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return err
	}
	target, err := flags.GetString("target")
	if err != nil {
		return err
	}

	ring, err := proxy.LoadFile(path)
	if err != nil {
		return err
	}

	endpoints := ring.Endpoints()
	out := cmd.OutOrStdout()
	if len(endpoints) == 0 {
		fmt.Fprintf(out, "No proxy endpoints found in %s\n", path)
		return nil
	}

	checker := proxy.NewChecker(
		proxy.WithCheckTimeout(timeout),
		proxy.WithCheckTarget(target),
	)

	statuses := make([]proxy.Status, len(endpoints))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(proxyCheckConcurrency)
	for i, ep := range endpoints {
		g.Go(func() error {
			statuses[i] = checker.Check(ctx, ep)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Workers never return an error

	writeProxyTable(out, endpoints, statuses)
	return nil
}

func writeProxyTable(out io.Writer, endpoints []proxy.Endpoint, statuses []proxy.Status) {
	width := len("Endpoint")
	for _, ep := range endpoints {
		width = max(width, len(ep.Redacted()))
	}

	ok := 0
	fmt.Fprintf(out, "  %-*s  %s\n", width, "Endpoint", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", width+16))
	for i, ep := range endpoints {
		if statuses[i] == proxy.StatusOK {
			ok++
		}
		fmt.Fprintf(out, "  %-*s  %s\n", width, ep.Redacted(), statuses[i])
	}
	fmt.Fprintf(out, "\n%d of %d endpoints usable.\n", ok, len(endpoints))
}
