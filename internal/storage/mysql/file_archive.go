package mysql

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"Hedera-Agent-Economy/internal/economy"
	xerrors "Hedera-Agent-Economy/internal/errors"
)

// ErrUnsupportedDriver 在配置了未知的存档驱动时返回。
var ErrUnsupportedDriver = xerrors.New(xerrors.CodeInvalidArgument, "暂不支持的存档驱动")

// FileArchive 以追加写的 JSONL 文件模拟落库，方便没有 MySQL 的环境迭代。
// 文件只写不读，经济体状态从不依赖它恢复。
type FileArchive struct {
	mu       sync.Mutex
	dataFile string
}

var _ economy.SettlementArchive = (*FileArchive)(nil)

// NewFileArchive 创建文件存档，目录不存在时自动创建。
func NewFileArchive(dataDir string) (*FileArchive, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeInitializationFailure, err, "创建数据目录失败")
	}
	return &FileArchive{dataFile: filepath.Join(dataDir, "settlements.log")}, nil
}

// Archive 将一笔流水追加到存档文件末尾，每行一条 JSON 记录。
func (f *FileArchive) Archive(_ context.Context, tx economy.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	file, err := os.OpenFile(f.dataFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "打开存档文件失败")
	}
	defer file.Close()

	encoded, err := json.Marshal(tx)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "序列化结算流水失败")
	}
	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return xerrors.Wrap(xerrors.CodeStorageFailure, err, "写入存档文件失败")
	}
	return nil
}

// Close 满足存档关闭约定，文件句柄按次打开，无需额外释放。
func (f *FileArchive) Close() error {
	return nil
}
