package quota

import (
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-comment-export/internal/model"
	"github.com/ad-tracker/youtube-comment-export/pkg/logger"
)

// Data API v3 unit costs for the calls the collector makes.
const (
	CostSearch         = 100
	CostChannels       = 1
	CostPlaylistItems  = 1
	CostVideos         = 1
	CostCommentThreads = 1

	defaultDailyLimit       = 10000 // YouTube API v3 default
	defaultThresholdPercent = 90
)

// Manager keeps an estimate of the quota consumed by this run.
// The API does not report remaining quota, so the numbers are derived from documented unit costs.
type Manager struct {
	dailyLimit       int
	thresholdPercent int // warn once this % of quota is used
	used             int
	operations       int
	byOperation      map[string]int
	warned           bool
	onRecord         func(operation string, cost int)
	logger           *zap.Logger
}

// NewManager creates a new quota manager
func NewManager(dailyLimit int, thresholdPercent int, log *zap.Logger) *Manager {
	if dailyLimit <= 0 {
		dailyLimit = defaultDailyLimit
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = defaultThresholdPercent
	}

	return &Manager{
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
		byOperation:      make(map[string]int),
		logger:           logger.OrNop(log),
	}
}

// OnRecord registers a hook called after every recorded operation.
func (m *Manager) OnRecord(fn func(operation string, cost int)) {
	m.onRecord = fn
}

// CheckQuotaAvailable reports whether requiredQuota more units stay under the threshold.
func (m *Manager) CheckQuotaAvailable(requiredQuota int) (bool, *model.QuotaInfo) {
	info := m.GetQuotaInfo()
	return m.used+requiredQuota <= m.thresholdQuota(), info
}

// RecordQuotaUsage records API quota usage
func (m *Manager) RecordQuotaUsage(quotaCost int, operationType string) {
	m.used += quotaCost
	m.operations++
	m.byOperation[operationType] += quotaCost

	m.logger.Debug("quota used",
		zap.String("operation", operationType),
		zap.Int("cost", quotaCost),
		zap.Int("used", m.used),
		zap.Int("limit", m.dailyLimit),
	)

	if !m.warned && m.used >= m.thresholdQuota() {
		m.warned = true
		m.logger.Warn("estimated quota threshold reached",
			zap.Int("used", m.used),
			zap.Int("limit", m.dailyLimit),
			zap.Float64("percent", m.GetQuotaUsagePercentage()),
		)
	}

	if m.onRecord != nil {
		m.onRecord(operationType, quotaCost)
	}
}

// GetQuotaInfo returns current quota information
func (m *Manager) GetQuotaInfo() *model.QuotaInfo {
	byOp := make(map[string]int, len(m.byOperation))
	for k, v := range m.byOperation {
		byOp[k] = v
	}

	remaining := m.dailyLimit - m.used
	if remaining < 0 {
		remaining = 0
	}

	return &model.QuotaInfo{
		DailyLimit:      m.dailyLimit,
		QuotaUsed:       m.used,
		QuotaRemaining:  remaining,
		OperationsCount: m.operations,
		ByOperation:     byOp,
	}
}

// GetQuotaUsagePercentage returns the percentage of daily quota used
func (m *Manager) GetQuotaUsagePercentage() float64 {
	return float64(m.used) / float64(m.dailyLimit) * 100
}

// IsQuotaExhausted checks if quota threshold has been reached
func (m *Manager) IsQuotaExhausted() bool {
	return m.used >= m.thresholdQuota()
}

// GetRemainingQuota returns how much quota is remaining before threshold
func (m *Manager) GetRemainingQuota() int {
	remaining := m.thresholdQuota() - m.used
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Manager) thresholdQuota() int {
	return (m.dailyLimit * m.thresholdPercent) / 100
}
