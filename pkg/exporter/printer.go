package exporter

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

// PrintObject 按类型分发打印单个对象：
// 文本对象直接输出内容，树对象输出对齐的条目列表 (像 git ls-tree)，
// 符号链接输出目标，字节对象只输出摘要信息防止终端乱码。
func (e *Exporter) PrintObject(ctx context.Context, hash types.Hash, w io.Writer) error {
	obj, err := e.store.Get(ctx, hash)
	if err != nil {
		return err
	}

	switch o := obj.(type) {
	case *core.Text:
		_, err := fmt.Fprintln(w, o.Content())
		return err
	case *core.Tree:
		return printTree(o, w)
	case *core.Symlink:
		_, err := fmt.Fprintf(w, "symlink -> %s\n", o.Target)
		return err
	case *core.Blob:
		fmt.Fprintf(w, "Type: bytes\nSize: %s\n", fmtSize(int64(len(o.Data))))
		fmt.Fprintf(w, "(binary data not shown, use 'vfs export' to save)\n")
		return nil
	default:
		return fmt.Errorf("unknown object type: %s", obj.Type())
	}
}

// WriteRaw 把对象的原始内容写给 writer (cat --raw 用)：
// 文本写重建后的内容，字节写原始负载，其他类型拒绝。
func (e *Exporter) WriteRaw(ctx context.Context, hash types.Hash, w io.Writer) error {
	obj, err := e.store.Get(ctx, hash)
	if err != nil {
		return err
	}
	switch o := obj.(type) {
	case *core.Text:
		_, err := io.WriteString(w, o.Content())
		return err
	case *core.Blob:
		_, err := w.Write(o.Data)
		return err
	default:
		return fmt.Errorf("object type %s has no raw form", obj.Type())
	}
}

func printTree(t *core.Tree, w io.Writer) error {
	fmt.Fprintf(w, "Type: tree\n\n")
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "TYPE\tHASH\tNAME\n")
	for _, entry := range t.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", entry.Type, entry.Hash[:8], entry.Name)
	}
	return tw.Flush()
}

func fmtSize(s int64) string {
	if s < 1024 {
		return fmt.Sprintf("%dB", s)
	} else if s < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(s)/1024)
	}
	return fmt.Sprintf("%.2fMB", float64(s)/1024/1024)
}
