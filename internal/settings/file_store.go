package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kliva/kliva/internal/units"
)

// document 是设置文件的磁盘格式。
type document struct {
	AccessToken  string                 `json:"access_token,omitempty"`
	DistanceUnit units.DistanceUnitType `json:"distance_unit,omitempty"`
}

// FileStore 每次读取都重新加载文件，外部修改（如 CLI --set-token）可即时生效。
type FileStore struct {
	path        string
	defaultUnit units.DistanceUnitType

	mu sync.Mutex
}

// NewFileStore 以 path 为设置文件构建存储；defaultUnit 在文件未指定单位时生效。
func NewFileStore(path string, defaultUnit units.DistanceUnitType) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("settings path required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	if defaultUnit == "" {
		defaultUnit = units.Metric
	}
	return &FileStore{path: abs, defaultUnit: defaultUnit}, nil
}

// Path 返回设置文件的绝对路径。
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) AccessToken(ctx context.Context) (string, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	if doc.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return doc.AccessToken, nil
}

func (s *FileStore) DistanceUnit(ctx context.Context) (units.DistanceUnitType, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return "", err
	}
	if doc.DistanceUnit == "" {
		return s.defaultUnit, nil
	}
	return doc.DistanceUnit, nil
}

// SetAccessToken 持久化访问令牌，空值会清除已保存的令牌。
func (s *FileStore) SetAccessToken(ctx context.Context, token string) error {
	return s.update(ctx, func(doc *document) {
		doc.AccessToken = strings.TrimSpace(token)
	})
}

// SetDistanceUnit 持久化距离单位偏好。
func (s *FileStore) SetDistanceUnit(ctx context.Context, unit units.DistanceUnitType) error {
	return s.update(ctx, func(doc *document) {
		doc.DistanceUnit = unit
	})
}

func (s *FileStore) read(ctx context.Context) (document, error) {
	if err := ctx.Err(); err != nil {
		return document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) update(ctx context.Context, mutate func(*document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	mutate(&doc)
	return s.save(doc)
}

// load 需持有 s.mu；文件不存在视为空文档。
func (s *FileStore) load() (document, error) {
	var doc document
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return doc, fmt.Errorf("read settings: %w", err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode settings %s: %w", s.path, err)
	}
	return doc, nil
}

// save 需持有 s.mu；写临时文件后 rename，保证读者看不到半截文件。
func (s *FileStore) save(doc document) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".settings-*")
	if err != nil {
		return err
	}
	tempName := tempFile.Name()

	_, err = tempFile.Write(payload)
	closeErr := tempFile.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tempName, 0o600)
	}
	if err != nil {
		os.Remove(tempName)
		return err
	}

	if err := os.Rename(tempName, s.path); err != nil {
		os.Remove(tempName)
		return err
	}
	return nil
}
