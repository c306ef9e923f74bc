package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

func validateOutput(format string) error {
	switch format {
	case outputTable, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("неизвестный формат вывода %q (table, json, yaml)", format)
	}
}

// printer выводит значение как таблицу, JSON или YAML.
type printer struct {
	w      io.Writer
	format string
}

// print сериализует v для json/yaml, для table вызывает table.
func (p printer) print(v any, table func(tw *tabwriter.Writer)) error {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

// message печатает строку подтверждения; в json/yaml режиме выводит объект {message}.
func (p printer) message(text string) error {
	return p.print(map[string]string{"message": text}, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, text)
	})
}
