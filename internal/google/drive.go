package google

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/coaching_booking/internal/model"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveRecordings ищет видеофайлы записей встреч на Google Drive
type DriveRecordings struct {
	svc    *drive.Service
	logger *zap.Logger
}

func NewDriveRecordings(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*DriveRecordings, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveRecordings{svc: svc, logger: logger}, nil
}

// queryEscaper экранирование строковых литералов в языке запросов Drive
var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func recordingsQuery(folderRef string, since time.Time) string {
	q := "mimeType contains 'video/' and trashed = false"
	if folderRef != "" {
		q = fmt.Sprintf("'%s' in parents and %s", queryEscaper.Replace(folderRef), q)
	}
	if !since.IsZero() {
		q += fmt.Sprintf(" and createdTime >= '%s'", since.UTC().Format(time.RFC3339))
	}
	return q
}

// ListRecordings видео в папке, созданные начиная с since, новые первыми.
// Файлы с нечитаемым createdTime отдаются с нулевым временем: его восстанавливают
// по отметке в имени файла Meet.
func (d *DriveRecordings) ListRecordings(ctx context.Context, folderRef string, since time.Time) ([]model.RecordingCandidate, error) {
	var recordings []model.RecordingCandidate

	call := d.svc.Files.List().
		Q(recordingsQuery(folderRef, since)).
		OrderBy("createdTime desc").
		Fields("nextPageToken, files(id, name, createdTime, parents)").
		PageSize(100)

	err := call.Pages(ctx, func(page *drive.FileList) error {
		for _, f := range page.Files {
			created, err := time.Parse(time.RFC3339, f.CreatedTime)
			if err != nil {
				d.logger.Warn("Recording has bad createdTime",
					zap.String("file_id", f.Id),
					zap.String("created_time", f.CreatedTime),
				)
				created = time.Time{}
			}

			parent := ""
			if len(f.Parents) > 0 {
				parent = f.Parents[0]
			}

			recordings = append(recordings, model.RecordingCandidate{
				FileRef:      f.Id,
				CreatedTime:  created,
				DisplayName:  f.Name,
				ParentFolder: parent,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list drive recordings: %w", err)
	}

	return recordings, nil
}
