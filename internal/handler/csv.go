package handler

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strings"
)

// readCSVRows 读取 multipart 表单中的 CSV 文件，第一行作为表头，
// 返回按表头取值的行记录。表头不区分大小写。
func readCSVRows(r *http.Request, field string, allowedColumns []string) ([]map[string]string, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, errors.New("未上传文件")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("CSV 文件为空或格式错误")
	}

	allowed := make(map[string]bool, len(allowedColumns))
	for _, column := range allowedColumns {
		allowed[strings.ToLower(column)] = true
	}

	columns := make([]string, len(header))
	for i, column := range header {
		column = strings.ToLower(strings.TrimSpace(column))
		if !allowed[column] {
			return nil, errors.New("CSV 包含不允许的列: " + column)
		}
		columns[i] = column
	}

	rows := make([]map[string]string, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := make(map[string]string, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
