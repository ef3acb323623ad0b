// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/cocowh/linemux/pkg/errors"
)

// EnvLoader overrides individual fields from environment variables named
// <prefix><SECTION>_<FIELD>, e.g. LINEMUX_SERVER_ADDRESS.
type EnvLoader struct {
	prefix string
	lookup func(string) (string, bool)
}

func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{prefix: prefix, lookup: os.LookupEnv}
}

func (l *EnvLoader) Load(cfg *Config) error {
	strs := map[string]*string{
		"SERVER_ADDRESS":    &cfg.Server.Address,
		"SERVER_CHARSET":    &cfg.Server.Charset,
		"CLIENT_HOST":       &cfg.Client.Host,
		"CLIENT_CHARSET":    &cfg.Client.Charset,
		"LOGGER_LEVEL":      &cfg.Logger.Level,
		"LOGGER_FORMAT":     &cfg.Logger.Format,
		"LOGGER_LOG_DIR":    &cfg.Logger.LogDir,
		"METRICS_ADDRESS":   &cfg.Metrics.Address,
		"METRICS_NAMESPACE": &cfg.Metrics.Namespace,
	}
	ints := map[string]*int{
		"SERVER_READ_TIMEOUT_MS":    &cfg.Server.ReadTimeoutMs,
		"SERVER_WRITE_TIMEOUT_MS":   &cfg.Server.WriteTimeoutMs,
		"SERVER_MAX_CONNECTIONS":    &cfg.Server.MaxConnections,
		"SERVER_MAX_LINE_LENGTH":    &cfg.Server.MaxLineLength,
		"SERVER_BROADCAST_WORKERS":  &cfg.Server.BroadcastWorkers,
		"CLIENT_PORT":               &cfg.Client.Port,
		"CLIENT_CONNECT_TIMEOUT_MS": &cfg.Client.ConnectTimeoutMs,
		"CLIENT_READ_TIMEOUT_MS":    &cfg.Client.ReadTimeoutMs,
	}
	bools := map[string]*bool{
		"LOGGER_ENABLE_STDOUT":     &cfg.Logger.EnableStdout,
		"LOGGER_ENABLE_FILE":       &cfg.Logger.EnableFile,
		"LOGGER_ENABLE_ERROR_FILE": &cfg.Logger.EnableErrorFile,
		"METRICS_ENABLED":          &cfg.Metrics.Enabled,
	}

	for key, dst := range strs {
		if v, ok := l.get(key); ok {
			*dst = v
		}
	}
	for key, dst := range ints {
		v, ok := l.get(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigErrorf(errors.ErrCodeConfigInvalid, "%s%s: %v", l.prefix, key, err)
		}
		*dst = n
	}
	for key, dst := range bools {
		v, ok := l.get(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigErrorf(errors.ErrCodeConfigInvalid, "%s%s: %v", l.prefix, key, err)
		}
		*dst = b
	}
	return nil
}

func (l *EnvLoader) get(key string) (string, bool) {
	v, ok := l.lookup(l.prefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
