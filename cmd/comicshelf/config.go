package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eringen/comicshelf"
)

// flagOrEnv returns the flag value when set, else the environment variable,
// else fallback.
func flagOrEnv(cmd *cobra.Command, flag, env, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return comicshelf.EnvOr(env, fallback)
}

func staticDir(cmd *cobra.Command) string {
	return flagOrEnv(cmd, "static", "STATIC_DIR", "public")
}

// siteConfig assembles the configuration shared by every subcommand.
func siteConfig(cmd *cobra.Command) (comicshelf.SiteConfig, error) {
	cfg := comicshelf.SiteConfig{
		Name:          comicshelf.EnvOr("SITE_NAME", "Comic Reader"),
		URL:           comicshelf.EnvOr("SITE_URL", ""),
		Description:   comicshelf.EnvOr("SITE_DESCRIPTION", "Read comics online."),
		Addr:          flagOrEnv(cmd, "addr", "ADDR", ":3000"),
		DatabasePath:  flagOrEnv(cmd, "db", "DATABASE_PATH", "data/comics.db"),
		LogLevel:      comicshelf.EnvOr("LOG_LEVEL", "info"),
		SessionSecret: comicshelf.EnvOr("SESSION_SECRET", ""),
	}
	if v := comicshelf.EnvOr("COOKIE_SECURE", ""); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		cfg.CookieSecure = secure
	}
	for env, dst := range map[string]*int{
		"MAX_PAGE_WIDTH": &cfg.MaxPageWidth,
		"COVER_WIDTH":    &cfg.CoverWidth,
		"JPEG_QUALITY":   &cfg.JPEGQuality,
	} {
		if v := comicshelf.EnvOr(env, ""); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", env, err)
			}
			*dst = n
		}
	}
	return cfg, nil
}
