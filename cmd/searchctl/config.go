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

package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/bufbuild/searchclient"
	"github.com/bufbuild/searchclient/transport"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "SEARCHCTL"

// config is the merged result of the config file, SEARCHCTL_* environment
// variables and command line flags, in increasing order of precedence.
type config struct {
	URL           string            `mapstructure:"url"`
	Sniff         bool              `mapstructure:"sniff"`
	SniffInterval time.Duration     `mapstructure:"sniff_interval"`
	Timeout       time.Duration     `mapstructure:"timeout"`
	Headers       map[string]string `mapstructure:"headers"`
	Verbose       bool              `mapstructure:"verbose"`
}

func bindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("url", "http://localhost:9200", "base URL of a cluster node")
	flags.Bool("sniff", false, "discover cluster nodes through the nodes-info API")
	flags.Duration("sniff-interval", 5*time.Minute, "how long sniffed nodes stay fresh")
	flags.Duration("timeout", 30*time.Second, "timeout for each request")
	flags.BoolP("verbose", "v", false, "log requests and node refreshes")
}

func loadConfig(flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	for flag, key := range map[string]string{
		"url":            "url",
		"sniff":          "sniff",
		"sniff-interval": "sniff_interval",
		"timeout":        "timeout",
		"verbose":        "verbose",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}
	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}
	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.URL == "" {
		return nil, errors.New("no cluster URL configured")
	}
	return &cfg, nil
}

func (c *config) newLogger() (*zap.Logger, error) {
	if !c.Verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func (c *config) clientOptions(logger *zap.Logger) []searchclient.ClientOption {
	options := []searchclient.ClientOption{
		searchclient.WithLogger(logger),
		searchclient.WithSender(transport.NewHTTPSender(transport.WithRequestTimeout(c.Timeout))),
	}
	if c.Sniff {
		options = append(options,
			searchclient.WithSniffing(c.URL),
			searchclient.WithSniffInterval(c.SniffInterval),
		)
	} else {
		options = append(options, searchclient.WithStaticNodes(c.URL))
	}
	// Keys that differ only in case end up as the same header, so apply
	// them in a fixed order.
	for _, key := range slices.Sorted(maps.Keys(c.Headers)) {
		options = append(options, searchclient.WithHeader(key, c.Headers[key]))
	}
	return options
}
