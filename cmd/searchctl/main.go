// Copyright 2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command searchctl sends a few basic requests to a search cluster.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bufbuild/searchclient"
	"github.com/bufbuild/searchclient/endpoint"
	"github.com/bufbuild/searchclient/nodes"
	"github.com/bufbuild/searchclient/response"
	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "searchctl",
		Short:         "Send requests to a search cluster",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	bindFlags(root.PersistentFlags())
	root.AddCommand(
		&cobra.Command{
			Use:   "ping",
			Short: "Show basic cluster information",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, client *searchclient.Client, _ []string) (any, error) {
				return searchclient.Send[response.PingResponse](ctx, client, endpoint.Ping())
			}),
		},
		&cobra.Command{
			Use:   "nodes",
			Short: "List the HTTP addresses the cluster publishes",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, client *searchclient.Client, _ []string) (any, error) {
				raw, err := searchclient.Send[json.RawMessage](ctx, client, endpoint.NodesInfo())
				if err != nil {
					return nil, err
				}
				return nodes.ParseNodesInfo("http", gjson.ParseBytes(raw)), nil
			}),
		},
		&cobra.Command{
			Use:   "get <index> <id>",
			Short: "Fetch a single document",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, client *searchclient.Client, args []string) (any, error) {
				return searchclient.Send[response.GetResponse[map[string]any]](ctx, client, endpoint.GetDocument(args[0], args[1]))
			}),
		},
		&cobra.Command{
			Use:   "create-index <index>",
			Short: "Create an index with default settings",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, client *searchclient.Client, args []string) (any, error) {
				return searchclient.Send[response.CommandResponse](ctx, client, endpoint.CreateIndex(args[0], nil))
			}),
		},
	)
	return root
}

type action func(ctx context.Context, client *searchclient.Client, args []string) (any, error)

// run wraps an action with config loading, client setup and JSON output.
func run(act action) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		logger, err := cfg.newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		client := searchclient.NewClient(cfg.clientOptions(logger)...)
		defer client.Close() //nolint:errcheck

		result, err := act(cmd.Context(), client, args)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), result)
	}
}

func writeJSON(w io.Writer, value any) error {
	out, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
