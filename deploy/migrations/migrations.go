package migrations

import "embed"

// Files 暴露结算存档所需的全部 SQL 迁移文件。
//
//go:embed *.sql
var Files embed.FS
