package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"abcost/internal/abc"
	"abcost/internal/analytics"
	"abcost/internal/config"
	"abcost/internal/model"
	"abcost/internal/service/excel"
	"abcost/internal/service/store"
)

// Handlers API处理器
type Handlers struct {
	store    *store.MemoryStore
	exporter *excel.Exporter

	cfg   *config.AppConfig
	cfgMu sync.RWMutex
}

// NewHandlers 创建处理器
func NewHandlers(memStore *store.MemoryStore, cfg *config.AppConfig) *Handlers {
	return &Handlers{
		store:    memStore,
		exporter: excel.NewExporter(),
		cfg:      cfg,
	}
}

// Response 通用响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// RegisterRoutes 注册 API 路由
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 数据导入
	router.POST("/upload", h.Upload)

	// 结果表查询
	router.GET("/costpools", h.GetCostPools)
	router.GET("/allocation", h.GetAllocation)
	router.GET("/summary", h.GetSummary)
	router.GET("/flights", h.GetFlights)
	router.GET("/filters", h.GetFilterOptions)
	router.GET("/dashboard", h.GetDashboard)

	// 数据导出
	router.GET("/export/excel", h.ExportExcel)
	router.GET("/export/csv", h.ExportCSV)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)
}

// ==================== 状态 ====================

// GetStatus 获取当前数据集状态
// GET /api/status
func (h *Handlers) GetStatus(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		success(c, gin.H{"loaded": false})
		return
	}

	success(c, gin.H{
		"loaded":      true,
		"fileId":      ds.ID,
		"fileName":    ds.FileName,
		"uploadedAt":  ds.UploadedAt,
		"costSheet":   ds.CostSheet,
		"eventSheet":  ds.EventSheet,
		"flights":     len(ds.Events.Flights),
		"activities":  len(ds.Pools),
		"types":       ds.Result.Summary.Types,
		"unallocated": ds.Result.Unallocated,
	})
}

// ==================== 导入 ====================

// Upload 上传工作簿并执行完整分摊计算
// POST /api/upload
func (h *Handlers) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, 4001, "未找到上传文件")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		errorResponse(c, 4001, "读取上传文件失败: "+err.Error())
		return
	}
	defer f.Close()

	parser := excel.NewParser()
	if err := parser.LoadFile(f); err != nil {
		errorResponse(c, 4002, "无效的 Excel 文件: "+err.Error())
		return
	}
	defer parser.Close()

	h.cfgMu.RLock()
	costKeyword := h.cfg.Excel.CostSheetKeyword
	eventKeyword := h.cfg.Excel.EventSheetKeyword
	timeColumn := h.cfg.Excel.DepartureTimeColumn
	h.cfgMu.RUnlock()

	costSheet, eventSheet, err := parser.ResolveSheets(costKeyword, eventKeyword)
	if err != nil {
		errorResponse(c, 4003, "定位工作表失败: "+err.Error())
		return
	}

	pools, err := parser.ParseCostPools(costSheet)
	if err != nil {
		var missingErr *model.MissingColumnsError
		if errors.As(err, &missingErr) {
			errorResponse(c, 4004, "成本池表缺少必需列: "+err.Error())
			return
		}
		errorResponse(c, 4004, "解析成本池表失败: "+err.Error())
		return
	}

	events, err := parser.ParseEvents(eventSheet, timeColumn)
	if err != nil {
		errorResponse(c, 4005, "解析事件表失败: "+err.Error())
		return
	}

	result := abc.Run(pools, events)

	ds := &store.Dataset{
		ID:         parser.FileID(),
		FileName:   fileHeader.Filename,
		UploadedAt: time.Now(),
		CostSheet:  costSheet,
		EventSheet: eventSheet,
		Pools:      pools,
		Events:     events,
		Result:     result,
	}
	h.store.Put(ds)

	success(c, gin.H{
		"fileId":      ds.ID,
		"fileName":    ds.FileName,
		"costSheet":   costSheet,
		"eventSheet":  eventSheet,
		"flights":     len(events.Flights),
		"activities":  len(pools),
		"unallocated": result.Unallocated,
	})
}

// ==================== 结果表 ====================

// GetCostPools 获取成本池费率表
// GET /api/costpools
func (h *Handlers) GetCostPools(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}
	success(c, ds.Result.RatedPools)
}

// GetAllocation 获取 航班 × 活动 分摊矩阵
// GET /api/allocation
func (h *Handlers) GetAllocation(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}
	success(c, ds.Result.Matrix)
}

// GetSummary 获取按 Type 汇总表
// GET /api/summary
func (h *Handlers) GetSummary(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}
	success(c, ds.Result.Summary)
}

// GetFlights 获取航班可视化行（支持过滤）
// GET /api/flights?continent=&destination=&period=
func (h *Handlers) GetFlights(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}

	views := analytics.BuildFlightViews(ds.Events, ds.Result.Summary, ds.Result.Periods)
	filtered := analytics.ApplyFilter(views, filterFromQuery(c))
	success(c, filtered)
}

// GetFilterOptions 获取过滤下拉选项
// GET /api/filters
func (h *Handlers) GetFilterOptions(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}

	views := analytics.BuildFlightViews(ds.Events, ds.Result.Summary, ds.Result.Periods)
	success(c, analytics.BuildFilterOptions(views))
}

// GetDashboard 获取看板数据：KPI + Top5 + 分组图表
// GET /api/dashboard?continent=&destination=&period=
func (h *Handlers) GetDashboard(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}

	views := analytics.BuildFlightViews(ds.Events, ds.Result.Summary, ds.Result.Periods)
	filtered := analytics.ApplyFilter(views, filterFromQuery(c))

	topFlights := analytics.TopFlights(ds.Result.Summary, analytics.IncludedFlights(filtered), 5)

	var topBreakdown []analytics.GroupTotal
	if len(topFlights) > 0 {
		topBreakdown = analytics.TypeBreakdown(topFlights[0], ds.Result.Summary.Types)
	}

	success(c, gin.H{
		"kpi":           analytics.ComputeKPI(filtered),
		"topFlights":    topFlights,
		"topBreakdown":  topBreakdown,
		"byTimePeriod":  analytics.CostByTimePeriod(filtered),
		"byDestination": analytics.CostByDestination(filtered, 10),
		"byContinent":   analytics.CostByContinent(filtered),
		"filteredCount": len(filtered),
		"totalFlights":  len(views),
	})
}

// ==================== 导出 ====================

// ExportExcel 导出最终 ABC 报告工作簿
// GET /api/export/excel
func (h *Handlers) ExportExcel(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}

	file, err := h.exporter.ExportReport(ds.Result.RatedPools, ds.Events, ds.Result.Matrix, ds.Result.Summary)
	if err != nil {
		errorResponse(c, 5001, "生成报告失败: "+err.Error())
		return
	}
	defer file.Close()

	buf, err := file.WriteToBuffer()
	if err != nil {
		errorResponse(c, 5001, "写入报告失败: "+err.Error())
		return
	}

	h.saveExportCopy("ABC_Final_Report.xlsx", buf.Bytes())

	c.Header("Content-Disposition", `attachment; filename="ABC_Final_Report.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCSV 导出 CSV 打包(zip)
// GET /api/export/csv
func (h *Handlers) ExportCSV(c *gin.Context) {
	ds, err := h.store.Current()
	if err != nil {
		errorResponse(c, 4040, "尚未上传数据")
		return
	}

	data, err := h.exporter.ExportCSVBundle(ds.Result.RatedPools, ds.Events, ds.Result.Matrix, ds.Result.Summary)
	if err != nil {
		errorResponse(c, 5001, "生成 CSV 包失败: "+err.Error())
		return
	}

	h.saveExportCopy("ABC_Data_CSV.zip", data)

	c.Header("Content-Disposition", `attachment; filename="ABC_Data_CSV.zip"`)
	c.Data(http.StatusOK, "application/zip", data)
}

// saveExportCopy 在 exports 目录留一份副本，失败只记日志
func (h *Handlers) saveExportCopy(name string, data []byte) {
	h.cfgMu.RLock()
	cfg := h.cfg
	h.cfgMu.RUnlock()

	path := config.GetDataPath(cfg, "exports", fmt.Sprintf("%d_%s", time.Now().Unix(), name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("保存导出副本失败: %v", err)
	}
}

// ==================== 配置 ====================

// excelConfigView 对外暴露的可调配置
type excelConfigView struct {
	CostSheetKeyword    string `json:"costSheetKeyword"`
	EventSheetKeyword   string `json:"eventSheetKeyword"`
	DepartureTimeColumn string `json:"departureTimeColumn"`
}

// GetConfig 获取运行配置
// GET /api/config
func (h *Handlers) GetConfig(c *gin.Context) {
	h.cfgMu.RLock()
	defer h.cfgMu.RUnlock()

	success(c, excelConfigView{
		CostSheetKeyword:    h.cfg.Excel.CostSheetKeyword,
		EventSheetKeyword:   h.cfg.Excel.EventSheetKeyword,
		DepartureTimeColumn: h.cfg.Excel.DepartureTimeColumn,
	})
}

// UpdateConfig 更新运行配置（只影响后续上传）
// PATCH /api/config
func (h *Handlers) UpdateConfig(c *gin.Context) {
	var req struct {
		CostSheetKeyword    *string `json:"costSheetKeyword"`
		EventSheetKeyword   *string `json:"eventSheetKeyword"`
		DepartureTimeColumn *string `json:"departureTimeColumn"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 4001, "无效的请求参数")
		return
	}

	h.cfgMu.Lock()
	if req.CostSheetKeyword != nil {
		h.cfg.Excel.CostSheetKeyword = *req.CostSheetKeyword
	}
	if req.EventSheetKeyword != nil {
		h.cfg.Excel.EventSheetKeyword = *req.EventSheetKeyword
	}
	if req.DepartureTimeColumn != nil {
		h.cfg.Excel.DepartureTimeColumn = *req.DepartureTimeColumn
	}
	cfgCopy := *h.cfg
	h.cfgMu.Unlock()

	if err := config.SaveConfig(&cfgCopy); err != nil {
		log.Printf("保存配置失败: %v", err)
	}

	success(c, nil)
}

// filterFromQuery 从查询参数读取过滤条件
func filterFromQuery(c *gin.Context) analytics.Filter {
	return analytics.Filter{
		Continent:   c.DefaultQuery("continent", analytics.FilterAll),
		Destination: c.DefaultQuery("destination", analytics.FilterAll),
		TimePeriod:  c.DefaultQuery("period", analytics.FilterAll),
	}
}
