// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3464)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - TelegramBotToken: Bot token for OTP delivery (optional)
  - TelegramAPIBase: API base URL override, used by tests

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type (sqlite or postgres)
	-telegram-token Telegram bot token
	-telegram-api   Telegram API base URL

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	TELEGRAM_BOT_TOKEN → -telegram-token
	TELEGRAM_API_BASE  → -telegram-api

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres

The Telegram bot token is deliberately optional: without it the server runs
with a log-only delivery channel, which is what development setups use.
*/
package cliparse
