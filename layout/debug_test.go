package layout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/platen/content"
	"github.com/ByLCY/platen/decorate"
	"github.com/ByLCY/platen/style"
)

func TestWriteDebugJSON(t *testing.T) {
	p := linesParagraph(2, 12)
	res, err := Compose(Document{
		PageWidth:  300,
		PageHeight: 300,
		Margins:    Margins{Top: 20, Right: 20, Bottom: 20, Left: 20},
		Blocks:     []content.Block{p},
		Decorator:  decorate.Border(10, 1, style.Black),
	}, Options{Measurer: testMeasurer})
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写入调试 JSON 失败: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试 JSON 失败: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeDebugJSON(&buf, res); err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if !bytes.Equal(raw, buf.Bytes()) {
		t.Fatalf("文件内容应与 EncodeDebugJSON 一致")
	}

	var decoded struct {
		Pages []struct {
			Blocks []struct {
				Kind  string `json:"kind"`
				Lines []any  `json:"lines"`
			} `json:"blocks"`
			Overlay []map[string]any `json:"overlay"`
		} `json:"pages"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if len(decoded.Pages) != 1 || len(decoded.Pages[0].Blocks) != 1 {
		t.Fatalf("期望 1 页 1 个块，实际 %+v", decoded.Pages)
	}
	if got := decoded.Pages[0].Blocks[0]; got.Kind != "paragraph" || len(got.Lines) != 2 {
		t.Fatalf("段落信息不正确: %+v", got)
	}
	if len(decoded.Pages[0].Overlay) != 1 {
		t.Fatalf("期望 1 个叠加操作，实际 %d", len(decoded.Pages[0].Overlay))
	}

	if err := WriteDebugJSON(nil, path); err != nil {
		t.Fatalf("nil 结果应直接返回: %v", err)
	}
}
