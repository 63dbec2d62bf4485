// File path: cmd/copybookd/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/api"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/common"
	"github.com/Aaron-Lilly/symphainy-production-sub001/internal/sqlite"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("copybookd: .env file not loaded", "error", err)
	} else {
		logger.Info("copybookd: environment loaded from .env")
	}

	addr := flag.String("addr", ":8081", "listen address")
	catalogPath := flag.String("catalog", defaultCatalogPath(), "path to the SQLite catalog database")
	codePageDefault := api.DefaultConfig().DefaultCodePage
	if env := strings.TrimSpace(os.Getenv("COPYBOOKD_CODE_PAGE")); env != "" {
		codePageDefault = env
	}
	codePage := flag.String("code-page", codePageDefault, "code page applied when a decode request names none")
	maxUpload := flag.Int64("max-upload", api.DefaultConfig().MaxUploadBytes, "maximum accepted request body in bytes")
	flag.Parse()

	logger.Info("copybookd: startup initiated", "addr", *addr, "catalog", *catalogPath)

	catalog, err := sqlite.Open(*catalogPath)
	if err != nil {
		logger.Error("copybookd: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer catalog.Close()

	cfg := api.Config{
		MaxUploadBytes:  *maxUpload,
		DefaultCodePage: *codePage,
	}
	server, err := api.NewServer(catalog, &cfg)
	if err != nil {
		logger.Error("copybookd: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("copybookd: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("copybookd: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultCatalogPath() string {
	if env := strings.TrimSpace(os.Getenv("SQLITE_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "catalog.db")
}
