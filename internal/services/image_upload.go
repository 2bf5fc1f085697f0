package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"blogroll/internal/logger"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaURLPrefix 上传文件对外访问的路径前缀
const MediaURLPrefix = "/media/"

// MediaStore 把上传的图片保存到本地目录 root 下
type MediaStore struct {
	root     string
	maxBytes int64
}

func NewMediaStore(root string, maxBytes int64) *MediaStore {
	return &MediaStore{root: root, maxBytes: maxBytes}
}

func (m *MediaStore) Root() string { return m.root }

// Save 校验并保存图片，返回相对 root 的路径 (posts/<uuid>.<ext>)
// 文件类型按内容判断，不信任客户端提供的 Content-Type
func (m *MediaStore) Save(header *multipart.FileHeader) (string, error) {
	if header.Size > m.maxBytes {
		return "", fmt.Errorf("%w: larger than %d MB", ErrInvalidImage, m.maxBytes>>20)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, m.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > m.maxBytes {
		return "", fmt.Errorf("%w: larger than %d MB", ErrInvalidImage, m.maxBytes>>20)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidImage, mtype.String())
	}

	name := path.Join("posts", uuid.NewString()+mtype.Extension())
	dst := filepath.Join(m.root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return name, nil
}

// Delete 删除已保存的图片，文件不存在时忽略
func (m *MediaStore) Delete(name string) {
	if name == "" {
		return
	}
	err := os.Remove(filepath.Join(m.root, filepath.FromSlash(name)))
	if err != nil && !os.IsNotExist(err) {
		logger.Log.Warn("remove image failed", zap.String("image", name), zap.Error(err))
	}
}

// URL 返回图片的访问地址
func URL(name string) string {
	if name == "" {
		return ""
	}
	return MediaURLPrefix + name
}
