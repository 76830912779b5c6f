package layout

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

// EncodeDebugJSON 将排版结果以缩进 JSON 写入 w，便于检查页面几何。
func EncodeDebugJSON(w io.Writer, res *Result) error {
	if res == nil {
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteDebugJSON 将排版结果输出为 JSON 文件。
func WriteDebugJSON(res *Result, path string) (err error) {
	if res == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	return EncodeDebugJSON(f, res)
}
