package container

import (
	app "grain-analyzer/internal/application"
	"grain-analyzer/internal/domain/port"
)

type Container struct {
	UserService     *app.UserService
	AnalysisService *app.AnalysisService
}

func New(userRepo port.UserRepository, analyzer port.GrainAnalyzer, codec port.ImageCodec,
	reporter port.ReportFormatter, masks port.MaskSource, opts app.Options) *Container {
	userService := app.NewUserService(userRepo)
	analysisService := app.NewAnalysisService(userService, analyzer, codec, reporter, masks, opts)

	return &Container{
		UserService:     userService,
		AnalysisService: analysisService,
	}
}
