package main

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"sigs.k8s.io/yaml"
)

// render 按 --output 输出 v
func render(w io.Writer, format string, v any) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "", "json":
		b, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
	case "yaml", "yml":
		b, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
