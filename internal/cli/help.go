package cli

import (
	"fmt"
	"io"
)

func PrintExtendedHelp(out io.Writer) {
	fmt.Fprintf(out, `FinBot %s - assistente financeiro por chat

Usage:
  finbot [flags]                 Start the HTTP API, Telegram bot and cron jobs
  finbot -cli [-m "mensagem"]    Chat in the terminal (one-shot with -m)
  finbot <command> [args]

Commands:
  config     Manage the configuration file
  channels   Show channel status
  token      Issue an API token
  import     Replay a file of messages into the ledger
  status     Show configuration summary
  doctor     Run diagnostics
  version    Print the version

Flags:
  -config <path>   Path to config file
  -data <dir>      Path to data directory
`, Version)
}

func PrintConfigHelp(out io.Writer) {
	fmt.Fprintln(out, `Usage: finbot config <command>

Commands:
  init [--force]   Write a config file with default values
  get <key>        Print a single value
  path             Print the config file location
  show             Print the config file`)
}

func PrintChannelsHelp(out io.Writer) {
	fmt.Fprintln(out, `Usage: finbot channels status

Channels are enabled in the config file (channels.telegram.enabled) or with
FINBOT_CHANNELS_TELEGRAM_ENABLED=true.`)
}

func PrintImportHelp(out io.Writer) {
	fmt.Fprintln(out, `Usage: finbot import -i <file> [-o <file>] [-c <workers>] [--rpm <n>] [--owner <id>]

Input is either plain text (one message per line, # for comments) or JSON
lines: {"owner":"telegram:123","message":"gastei 30 no uber ontem","date":"10/03/2025"}
Output ending in .jsonl or .json is written as JSON, anything else as text.`)
}
