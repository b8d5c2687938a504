package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/aihub/docqa-go/internal/errors"
	"github.com/aihub/docqa-go/internal/ingest"
	"github.com/aihub/docqa-go/internal/logger"
	"github.com/aihub/docqa-go/internal/retrieval"
)

// DocumentList 请求中的documents字段，接受单个字符串或字符串数组
// 在边界处归一化为有序字符串序列
type DocumentList []string

// UnmarshalJSON 实现string|[]string的兼容解析
func (d *DocumentList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*d = DocumentList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("documents must be a string or an array of strings")
	}
	*d = DocumentList(many)
	return nil
}

// RunRequest /run请求体
type RunRequest struct {
	Documents DocumentList `json:"documents" validate:"required,min=1,dive,required"`
	Questions []string     `json:"questions" validate:"required,min=1,dive,required"`
}

// RunResponse /run响应体，每个问题恰好一个答案，顺序与输入一致
type RunResponse struct {
	Answers []string `json:"answers"`
}

// RunService 编排入库与检索两条流水线
type RunService struct {
	ingestion *ingest.Pipeline
	retrieval *retrieval.Pipeline
	validate  *validator.Validate
}

// NewRunService 创建请求编排服务
func NewRunService(ingestion *ingest.Pipeline, retrievalPipeline *retrieval.Pipeline) *RunService {
	return &RunService{
		ingestion: ingestion,
		retrieval: retrievalPipeline,
		validate:  validator.New(),
	}
}

// Validate 校验请求体
func (s *RunService) Validate(req *RunRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// Run 先入库全部文档（单文档故障隔离），再逐问生成答案
// 无论部分失败与否，answers数量恒等于questions数量
func (s *RunService) Run(ctx context.Context, req *RunRequest) *RunResponse {
	logger.Info("processing run request",
		zap.Int("documents", len(req.Documents)),
		zap.Int("questions", len(req.Questions)))

	s.ingestion.IngestAll(ctx, req.Documents)

	answers := make([]string, 0, len(req.Questions))
	for _, question := range req.Questions {
		answers = append(answers, s.retrieval.Answer(ctx, question))
	}

	return &RunResponse{Answers: answers}
}
