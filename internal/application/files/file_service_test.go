package files

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/medrent/backend/internal/domain/clinical"
	"github.com/medrent/backend/internal/domain/shared"
	"github.com/medrent/backend/internal/infrastructure/persistence"
	"github.com/medrent/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(body)
	args := m.Called(ctx, key, string(data), size, contentType)
	return args.Error(0)
}

func (m *mockStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	patient := testutil.SeedPatient(t, db, "PAT-0001", "Nadia", "Jlassi")
	storage := new(mockStorage)
	svc := NewFileService(repos.Files(), repos.Patients(), storage, Config{MaxSize: 1024, PresignTTL: time.Minute}, nil)

	keyPrefix := "patients/" + patient.ID.String() + "/"
	storage.On("Put", ctx, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, keyPrefix) && strings.HasSuffix(key, "-compte-rendu-nuit-1.pdf")
	}), "%PDF-1.4", int64(8), "application/pdf").Return(nil).Once()

	res, err := svc.Upload(ctx, UploadRequest{
		PatientID:   &patient.ID,
		Type:        "DIAGNOSTIC_DOCUMENT",
		FileName:    `C:\scans\compte rendu nuit 1.pdf`,
		ContentType: "application/pdf; charset=binary",
		Size:        8,
		Body:        strings.NewReader("%PDF-1.4"),
	})
	require.NoError(t, err)
	assert.Equal(t, "compte-rendu-nuit-1.pdf", res.FileName)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, strings.HasPrefix(res.ObjectKey, keyPrefix))
	storage.AssertExpectations(t)

	t.Run("presigned download", func(t *testing.T) {
		expires := time.Now().Add(time.Minute)
		storage.On("PresignGet", ctx, res.ObjectKey, time.Minute).Return("https://s3.local/signed", expires, nil).Once()
		link, err := svc.DownloadURL(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.local/signed", link.URL)
		require.NotNil(t, link.ExpiresAt)
	})

	t.Run("listed on the patient", func(t *testing.T) {
		list, err := svc.ListByPatient(ctx, patient.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, res.ID, list[0].ID)
	})

	t.Run("delete removes the object", func(t *testing.T) {
		storage.On("Delete", ctx, res.ObjectKey).Return(nil).Once()
		require.NoError(t, svc.Delete(ctx, res.ID))
		assert.Equal(t, int64(0), testutil.CountRows(t, db, &clinical.File{}, ""))
		storage.AssertExpectations(t)
	})
}

func TestFileService_UploadValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	storage := new(mockStorage)
	svc := NewFileService(repos.Files(), repos.Patients(), storage, Config{MaxSize: 16}, nil)

	_, err := svc.Upload(ctx, UploadRequest{FileName: "a.pdf", ContentType: "application/pdf", Size: 17, Body: strings.NewReader("x")})
	assertDomainCode(t, err, "FILE_TOO_LARGE")

	_, err = svc.Upload(ctx, UploadRequest{FileName: "a.exe", ContentType: "application/x-msdownload", Size: 4, Body: strings.NewReader("MZ..")})
	assertDomainCode(t, err, "UNSUPPORTED_FILE_TYPE")

	_, err = svc.Upload(ctx, UploadRequest{FileName: "a.pdf", ContentType: "application/pdf", Size: 0, Body: strings.NewReader("")})
	assertDomainCode(t, err, "EMPTY_FILE")

	ghost := testutil.NewTestUUID("ghost")
	_, err = svc.Upload(ctx, UploadRequest{PatientID: &ghost, FileName: "a.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	storage.On("Put", ctx, mock.Anything, "%PDF", int64(4), "application/pdf").Return(errors.New("bucket unavailable")).Once()
	_, err = svc.Upload(ctx, UploadRequest{FileName: "a.pdf", ContentType: "application/pdf", Size: 4, Body: strings.NewReader("%PDF")})
	assert.ErrorContains(t, err, "bucket unavailable")
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &clinical.File{}, ""))
	storage.AssertExpectations(t)
}

func TestFileService_ExternalLink(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	file, err := clinical.NewFile("https://drive.example.com/rapport.pdf", "", clinical.FileOther, nil)
	require.NoError(t, err)
	require.NoError(t, repos.Files().Save(ctx, file))

	svc := NewFileService(repos.Files(), repos.Patients(), new(mockStorage), Config{}, nil)
	link, err := svc.DownloadURL(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.example.com/rapport.pdf", link.URL)
	assert.Nil(t, link.ExpiresAt)

	require.NoError(t, svc.Delete(ctx, file.ID))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "document", sanitizeFileName("  "))
	assert.Equal(t, "passwd", sanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "ordonnance---t--.png", sanitizeFileName("ordonnance (été).png"))
}
