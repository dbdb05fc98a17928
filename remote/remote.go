// Package remote mirrors a shared s3 bucket into one album of the local
// photo library.
package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/matthewar/snekframe/config"
	"github.com/matthewar/snekframe/library"
	"github.com/matthewar/snekframe/util"
)

const remoteCheckInterval = time.Duration(1 * time.Hour)

// ObjectStore is the slice of the s3 api the manager needs: listing the
// bucket and fetching objects through the download manager.
type ObjectStore interface {
	manager.DownloadAPIClient

	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Manager keeps one album directory in sync with the contents of an s3
// bucket. New scans are triggered through the library scanner after any
// change.
type Manager struct {
	client ObjectStore

	profile  string
	s3Bucket string

	album      string
	outputPath string

	scanner *library.Scanner
}

func NewManager(cfg *config.Config, scanner *library.Scanner) (*Manager, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("no s3 bucket configured")
	}
	if cfg.AWSProfile == "" {
		return nil, errors.New("no aws profile configured")
	}

	// Load the Shared AWS Configuration (~/.aws/config)
	ctxCfg, cancelCfg := context.WithTimeout(context.Background(), time.Duration(3*time.Second))
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctxCfg,
		awsconfig.WithSharedConfigProfile(cfg.AWSProfile),
	)
	cancelCfg()
	if err != nil {
		return nil, err
	}

	return NewManagerWithClient(s3.NewFromConfig(awsCfg), cfg, scanner), nil
}

// NewManagerWithClient builds a Manager on an already constructed client.
func NewManagerWithClient(client ObjectStore, cfg *config.Config, scanner *library.Scanner) *Manager {
	return &Manager{
		client:     client,
		profile:    cfg.AWSProfile,
		s3Bucket:   cfg.S3Bucket,
		album:      cfg.S3Album,
		outputPath: filepath.Join(cfg.PhotosPath(), cfg.S3Album),
		scanner:    scanner,
	}
}

func (m *Manager) GetS3Objects(ctx context.Context) ([]s3types.Object, error) {
	output, err := m.client.ListObjectsV2(
		ctx,
		&s3.ListObjectsV2Input{
			Bucket: aws.String(m.s3Bucket),
		},
	)
	if err != nil {
		return nil, err
	}

	return output.Contents, nil
}

func (m *Manager) DownloadObject(ctx context.Context, name string) error {
	downloader := manager.NewDownloader(m.client)

	f, err := os.Create(filepath.Join(m.outputPath, name))
	if err != nil {
		return fmt.Errorf("unable to create file for s3 download, %s, %w", name, err)
	}
	defer f.Close()

	if _, err := downloader.Download(ctx, f, &s3.GetObjectInput{
		Bucket: aws.String(m.s3Bucket),
		Key:    aws.String(name),
	}); err != nil {
		return fmt.Errorf("unable to download object from s3, %s, %w", name, err)
	}
	return nil
}

func (m *Manager) getLocalFiles() (mapset.Set[string], error) {
	dirs, err := os.ReadDir(m.outputPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory, %s, %w", m.outputPath, err)
	}

	localFiles := mapset.NewSet[string]()
	for _, dir := range dirs {
		name := dir.Name()
		if !util.IsSupportedPhoto(name) {
			continue
		}
		localFiles.Add(name)
	}

	if localFiles.Cardinality() == 0 {
		slog.Info("no local files found", "album", m.album)
	}
	return localFiles, nil
}

func (m *Manager) getRemoteFiles(ctx context.Context) (mapset.Set[string], error) {
	remoteFiles := mapset.NewSet[string]()
	objects, err := m.GetS3Objects(ctx)
	if err != nil {
		return nil, err
	}
	for _, object := range objects {
		name := aws.ToString(object.Key)
		if !util.IsSupportedPhoto(name) {
			continue
		}
		remoteFiles.Add(name)
	}

	if remoteFiles.Cardinality() == 0 {
		slog.Info("no remote files found", "bucket", m.s3Bucket)
	}
	return remoteFiles, nil
}

// SyncAlbum brings the local album directory in line with the bucket and
// triggers a library rescan when anything changed.
func (m *Manager) SyncAlbum(ctx context.Context) error {
	if err := os.MkdirAll(m.outputPath, 0o755); err != nil {
		return fmt.Errorf("unable to create album directory, %s, %w", m.outputPath, err)
	}

	localFiles, err := m.getLocalFiles()
	if err != nil {
		return err
	}

	remoteFiles, err := m.getRemoteFiles(ctx)
	if err != nil {
		return err
	}

	toDelete := localFiles.Difference(remoteFiles).ToSlice()
	toDownload := remoteFiles.Difference(localFiles).ToSlice()
	if len(toDelete) > 0 {
		slog.Info("deleting local files", "count", len(toDelete), "names", toDelete)
		for _, name := range toDelete {
			filePath := filepath.Join(m.outputPath, name)
			if err := os.Remove(filePath); err != nil {
				slog.Warn("unable to remove local file", "error", err)
			}
		}
	}
	if len(toDownload) > 0 {
		slog.Info("adding files", "count", len(toDownload), "names", toDownload)
		for _, name := range toDownload {
			if err := m.DownloadObject(ctx, name); err != nil {
				slog.Warn("error while downloading s3 object", "name", name, "error", err)
			}
		}
	}

	if len(toDelete) > 0 || len(toDownload) > 0 {
		if _, _, err := m.scanner.Rescan(); err != nil {
			slog.Warn("error rescanning library after remote sync", "error", err)
		}
	}
	return nil
}

func (m *Manager) Run() {
	ticker := time.NewTicker(remoteCheckInterval)

	// Initial sync
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(30*time.Minute))
	if err := m.SyncAlbum(ctx); err != nil {
		slog.Warn("error while syncing with remote", "error", err)
	}
	cancel()

	for range ticker.C {
		ctx, cancel = context.WithTimeout(context.Background(), time.Duration(30*time.Minute))
		if err := m.SyncAlbum(ctx); err != nil {
			slog.Warn("error while syncing with remote", "error", err)
		}
		cancel()
	}
}
