package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"aipod/src/storage"
	"aipod/src/storage/localstore"
	"aipod/src/storage/minioctrl"
)

func openDatabase() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return db, nil
}

// newArtifactStore builds the configured artifact store: "minio" for
// object storage, "local" for a plain directory.
func newArtifactStore(ctx context.Context) (storage.ArtifactStore, error) {
	switch mode := viper.GetString("storage.mode"); mode {
	case "minio":
		minioService, err := minioctrl.NewMinioService(
			viper.GetString("minio.endpoint"),
			viper.GetString("minio.access_key"),
			viper.GetString("minio.secret_key"),
			viper.GetBool("minio.use_ssl"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio service: %v", err)
		}
		if err := minioService.EnsureBucketExists(ctx); err != nil {
			return nil, err
		}
		return minioService, nil
	case "local":
		return localstore.NewLocalStore(viper.GetString("storage.path"))
	default:
		return nil, fmt.Errorf("unknown storage mode: %s", mode)
	}
}
