package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/formstate/internal/cli"
	"github.com/aretw0/formstate/internal/logging"
	"github.com/spf13/cobra"
)

// envEncryptionKey is read when --encryption-key is not given.
const envEncryptionKey = "FORMSTATE_ENCRYPTION_KEY"

var rootCmd = &cobra.Command{
	Use:   "formstate",
	Short: "formstate tracks form values and their dirty and saveable flags",
	Long: `formstate keeps a map of form fields with their current and baseline values
and derives whether the form has unsaved changes (dirty) and whether it may be
submitted (saveable). Sessions can be stored in memory, on disk, in SQLite or in Redis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("store", cli.StoreFile, "Session store: memory, file, sqlite or redis")
	pf.String("store-path", "", "Directory of the file store or database file of the sqlite store")
	pf.String("redis-addr", "localhost:6379", "Redis address")
	pf.String("redis-password", "", "Redis password")
	pf.Int("redis-db", 0, "Redis database")
	pf.String("redis-prefix", "", "Redis key prefix")
	pf.Duration("redis-ttl", 0, "Expire idle Redis sessions after this duration (0 keeps them)")
	pf.String("encryption-key", "", "Encrypt sessions at rest with this 32-byte key, hex or base64 (default $"+envEncryptionKey+")")
	pf.StringSlice("mask-field", nil, "Regular expression of field keys masked before saving (repeatable)")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("log-format", string(logging.FormatText), "Log format: text or json")
}

func storeOptions(cmd *cobra.Command) cli.StoreOptions {
	flags := cmd.Flags()
	opts := cli.StoreOptions{}
	opts.Kind, _ = flags.GetString("store")
	opts.Path, _ = flags.GetString("store-path")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.RedisPassword, _ = flags.GetString("redis-password")
	opts.RedisDB, _ = flags.GetInt("redis-db")
	opts.RedisPrefix, _ = flags.GetString("redis-prefix")
	opts.RedisTTL, _ = flags.GetDuration("redis-ttl")
	opts.EncryptionKey, _ = flags.GetString("encryption-key")
	if opts.EncryptionKey == "" {
		opts.EncryptionKey = os.Getenv(envEncryptionKey)
	}
	opts.MaskFields, _ = flags.GetStringSlice("mask-field")
	return opts
}

func openBackend(cmd *cobra.Command) (*cli.Backend, error) {
	return cli.OpenBackend(cmd.Context(), storeOptions(cmd))
}

func isDebug(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}

// serverLogger logs at Info by default and at Debug with --debug.
func serverLogger(cmd *cobra.Command) *slog.Logger {
	format, _ := cmd.Flags().GetString("log-format")
	level := slog.LevelInfo
	if isDebug(cmd) {
		level = slog.LevelDebug
	}
	return logging.New(level, logging.Format(format))
}
