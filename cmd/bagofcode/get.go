package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/foster/bag-of-code/db"
)

func newGetCmd() *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get [table] [key]",
		Short: "Display a single table entry",
		Long:  "Decodes and displays the entry stored under key in table",
		Args:  cobra.ExactArgs(2),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			if err := db.WithClient(dbConfig(), func(dbClient *db.Client) error {
				x, err := get(dbClient, args[0], args[1])
				if err != nil {
					return err
				}
				return emitJSON(x)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return getCmd
}

func get(dbClient *db.Client, tableName string, key string) (interface{}, error) {
	table, err := resolveTable(tableName)
	if err != nil {
		return nil, err
	}

	switch table {
	case db.TablePackages:
		rec, err := dbClient.Package(key)
		if err != nil {
			return nil, fmt.Errorf("getting package: %s", err)
		}
		return rec, nil

	case db.TableModels:
		m, err := dbClient.Model(key)
		if err != nil {
			return nil, fmt.Errorf("getting model: %s", err)
		}
		return newModelSummary(key, m), nil

	case db.TableDiscovered:
		dp, err := dbClient.Discovered(key)
		if err != nil {
			return nil, fmt.Errorf("getting discovered package: %s", err)
		}
		return dp, nil

	case db.TableLanguages:
		rl, err := dbClient.Languages(key)
		if err != nil {
			return nil, fmt.Errorf("getting repository languages: %s", err)
		}
		return rl, nil

	default:
		var s string
		if err := dbClient.Meta(key, &s); err != nil {
			return nil, fmt.Errorf("getting metadata: %s", err)
		}
		return s, nil
	}
}
