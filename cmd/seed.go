package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"movie-awards/internal/domain"
	"movie-awards/internal/repository"
)

func cmdSeed() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load award fixtures from a YAML file into the local store",
		RunE: func(_ *cobra.Command, _ []string) error {
			if cfg.LocalDBPath == "" {
				return errors.New("seed requires local_db_path (LOCAL_DB_PATH)")
			}
			records, err := loadFixtures(file)
			if err != nil {
				return err
			}

			store, err := repository.NewLevelDBStore(cfg.LocalDBPath)
			if err != nil {
				return errors.Wrap(err, "failed to open local store")
			}
			defer store.Close()

			for i, rec := range records {
				if err := store.PutAward(rec); err != nil {
					return errors.Wrapf(err, "fixture %d", i)
				}
			}
			total, err := store.Count()
			if err != nil {
				return errors.Wrap(err, "failed to count records")
			}
			logger.Info("seeded local store", "path", cfg.LocalDBPath, "written", len(records), "total", total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file holding a list of award records")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// loadFixtures reads a YAML sequence of award records. Keys other than the
// typed attributes are kept as additional attributes.
func loadFixtures(path string) ([]domain.AwardRecord, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read fixtures %s", path)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse fixtures %s", path)
	}

	records := make([]domain.AwardRecord, 0, len(raw))
	for i, item := range raw {
		buf, err := json.Marshal(item)
		if err != nil {
			return nil, errors.Wrapf(err, "fixture %d", i)
		}
		var rec domain.AwardRecord
		if err := json.Unmarshal(buf, &rec); err != nil {
			return nil, errors.Wrapf(err, "fixture %d", i)
		}
		records = append(records, rec)
	}
	return records, nil
}
