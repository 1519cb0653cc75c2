/*
 * @module service/reference/loader
 * @description 参考数据加载器，启动时从CSV数据集构建参考画像
 * @architecture 分层架构 - 数据访问层
 * @documentReference dev_docs/drift_requirements.md
 * @stateFlow 打开文件 -> 字符集解码 -> CSV解析 -> 画像构建 -> 记录schema日志
 * @rules 加载失败时回退为空画像并记录错误，不中断服务启动
 * @dependencies encoding/csv, golang.org/x/text
 * @refs service/reference/profile.go, service/init.go
 */

package reference

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// Loader 参考数据加载器
type Loader struct {
	Path     string
	Encoding string // utf-8（默认）或 gbk
}

// NewLoader 创建参考数据加载器
func NewLoader(path, encoding string) *Loader {
	return &Loader{
		Path:     path,
		Encoding: encoding,
	}
}

// Load 读取并解析参考数据集，构建参考画像
func (l *Loader) Load() (*Profile, error) {
	file, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("打开参考数据文件失败: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.EqualFold(l.Encoding, "gbk") {
		reader = transform.NewReader(file, simplifiedchinese.GBK.NewDecoder())
	}

	csvReader := csv.NewReader(reader)
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析参考数据失败: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("参考数据为空: %s", l.Path)
	}

	return BuildProfile(records[0], records[1:]), nil
}

// LoadOrEmpty 加载参考画像，失败时回退为空画像，只记录错误不中断服务
func (l *Loader) LoadOrEmpty() *Profile {
	profile, err := l.Load()
	if err != nil {
		slog.Error("加载参考数据失败", "path", l.Path, "error", err)
		return Empty()
	}

	columns := make([]string, 0, len(profile.Fields))
	for _, f := range profile.Fields {
		columns = append(columns, fmt.Sprintf("%s(%s)", f.Name, f.Kind))
	}
	slog.Info("参考数据加载完成", "path", l.Path, "columns", strings.Join(columns, ", "))

	return profile
}
