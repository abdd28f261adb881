package services

import (
	"context"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/repository"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartAutoPublish раз в минуту публикует черновики с наступившим
// auto_publish_date. published_by для них остаётся пустым: публикацию
// выполнил планировщик, а не пользователь.
func StartAutoPublish(repo repository.HeadlineRepo) *cron.Cron {
	c := cron.New()
	_, _ = c.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		n, err := repo.PublishDue(ctx, time.Now().UTC())
		if err != nil {
			logger.Log.Error("Автопубликация: ошибка", zap.Error(err))
			return
		}
		if n > 0 {
			logger.Log.Info("Автопубликация: опубликованы отложенные объявления", zap.Int64("count", n))
		}
	})
	c.Start()
	return c
}
