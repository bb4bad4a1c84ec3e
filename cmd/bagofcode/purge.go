package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
)

func newPurgeCmd() *cobra.Command {
	purgeCmd := &cobra.Command{
		Use:   "purge [table]...",
		Short: "Delete every entry in one or more tables",
		Long:  fmt.Sprintf("Deletes every entry in the named tables; valid tables are %v", db.Tables()),
		Args:  cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				tables := make([]string, 0, len(args))
				for _, arg := range args {
					table, err := resolveTable(arg)
					if err != nil {
						return err
					}
					tables = append(tables, table)
				}
				if err := dbClient.Purge(tables...); err != nil {
					return fmt.Errorf("purging %v: %s", tables, err)
				}
				log.WithField("tables", tables).Info("Purged")
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return purgeCmd
}

// resolveTable maps a table name or one of its short aliases to the table
// name.
func resolveTable(name string) (string, error) {
	switch name {
	case db.TablePackages, "package", "pkg", "pkgs":
		return db.TablePackages, nil
	case db.TableModels, "model":
		return db.TableModels, nil
	case db.TableDiscovered, "discover", "disc":
		return db.TableDiscovered, nil
	case db.TableLanguages, "language", "langs", "lang":
		return db.TableLanguages, nil
	case db.TableMetadata, "metadata", "meta":
		return db.TableMetadata, nil
	default:
		return "", fmt.Errorf("unrecognized table %q", name)
	}
}
