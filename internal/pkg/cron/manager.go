package cron

import (
	"UniMarket/internal/job"
	log "log/slog"

	"github.com/robfig/cron/v3"
)

type Manager struct {
	engine           *cron.Cron
	listingViewJob   *job.ListingViewJob
	listingExpireJob *job.ListingExpireJob
}

func NewCronManager(listingViewJob *job.ListingViewJob, listingExpireJob *job.ListingExpireJob) *Manager {
	return &Manager{
		engine:           cron.New(cron.WithSeconds()),
		listingViewJob:   listingViewJob,
		listingExpireJob: listingExpireJob,
	}
}

// RegisterJobs 注册定时任务
func (s *Manager) RegisterJobs() error {
	// 浏览计数每分钟落库
	if _, err := s.engine.AddJob("0 * * * * *", s.listingViewJob); err != nil {
		return err
	}
	if _, err := s.engine.AddJob("@daily", s.listingExpireJob); err != nil {
		return err
	}
	return nil
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	s.engine.Stop()
}
