package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvDBKind        = "DB_KIND"
	EnvDBHost        = "DB_HOST"
	EnvDBPort        = "DB_PORT"
	EnvDBUser        = "DB_USER"
	EnvDBPassword    = "DB_PASSWORD"
	EnvDBName        = "DB_NAME"
	EnvDBDSN         = "DB_DSN"
	EnvOutputDir     = "OUTPUT_DIR"
	EnvReferenceDate = "RFM_REFERENCE_DATE"
	EnvWarehouseKind = "WAREHOUSE_KIND"
	EnvWarehouseDSN  = "WAREHOUSE_DSN"
)

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overlays environment variables on p. getenv is usually os.Getenv;
// tests pass a map lookup. Empty variables are ignored. DB_PASSWORD is taken
// verbatim (no trimming).
func ApplyEnv(p *Pipeline, getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&p.Source.Kind, EnvDBKind)
	set(&p.Source.Host, EnvDBHost)
	set(&p.Source.User, EnvDBUser)
	set(&p.Source.Database, EnvDBName)
	set(&p.Source.DSN, EnvDBDSN)
	set(&p.Output.Dir, EnvOutputDir)
	set(&p.RFM.ReferenceDate, EnvReferenceDate)
	set(&p.Warehouse.Kind, EnvWarehouseKind)
	set(&p.Warehouse.DSN, EnvWarehouseDSN)

	if v := getenv(EnvDBPassword); v != "" {
		p.Source.Password = v
	}
	if v := strings.TrimSpace(getenv(EnvDBPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q: %w", EnvDBPort, v, err)
		}
		p.Source.Port = port
	}
	return nil
}
