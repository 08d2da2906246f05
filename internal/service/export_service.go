package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-flow/backend/internal/repository"
	"shift-flow/backend/pkg/apperr"
	"shift-flow/backend/pkg/ecma"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoShifts     = errors.New("该时间范围内无班次")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某排班组在给定日期范围内的班次为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportGroupShifts 导出组内班次表
	ExportGroupShifts(ctx context.Context, groupID, from, to string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportGroupShifts(ctx context.Context, groupID, from, to string) (*bytes.Buffer, string, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.NotFound(
				fmt.Sprintf("组 %s 不存在", groupID), "排班组不存在")
		}
		return nil, "", err
	}

	filter := repository.ShiftFilter{GroupIDs: []string{groupID}}
	if from != "" {
		day, _, err := ecma.Parse(from, time.UTC)
		if err != nil {
			return nil, "", malformedTemporal(err)
		}
		filter.StartFrom = day.Format("2006-01-02")
	}
	if to != "" {
		day, _, err := ecma.Parse(to, time.UTC)
		if err != nil {
			return nil, "", malformedTemporal(err)
		}
		filter.StartTo = day.AddDate(0, 0, 1).Format("2006-01-02")
	}

	shifts, err := s.repo.Shift.List(ctx, filter)
	if err != nil {
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, "", err
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "班次表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 18)
	f.SetColWidth(sheetName, "C", "D", 28)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 班次表", group.DisplayName))
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, "A2", "班次类型")
	f.SetCellValue(sheetName, "B2", "成员")
	f.SetCellValue(sheetName, "C2", "开始")
	f.SetCellValue(sheetName, "D2", "结束")

	// 数据行（班次已按 start_value 升序返回）
	row := 3
	for i := range shifts {
		shift := &shifts[i]
		typeName := ""
		if shift.ShiftType != nil {
			typeName = shift.ShiftType.Name
		}
		userName := ""
		if shift.User != nil {
			userName = shift.User.DisplayName
		}
		f.SetCellValue(sheetName, cell("A", row), typeName)
		f.SetCellValue(sheetName, cell("B", row), userName)
		f.SetCellValue(sheetName, cell("C", row), shift.StartValue)
		f.SetCellValue(sheetName, cell("D", row), shift.EndValue)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("班次表_%s.xlsx", group.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
