package repository

import (
	"go.uber.org/zap"

	"github.com/arpan-dhatt/concourse/internal/storage"
)

// 逻辑命名空间前缀：选课与隐私数据共用同一物理存储
const (
	enrollmentNamespace = "enrollment:"
	privacyNamespace    = "privacy:"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Enrollment EnrollmentRepository
	Privacy    PrivacyRepository
}

// NewRepository 在同一个物理存储上创建两个命名空间隔离的 Repository
func NewRepository(store storage.Store, logger *zap.Logger) *Repository {
	return &Repository{
		Enrollment: NewEnrollmentRepo(storage.Namespace(store, enrollmentNamespace), logger),
		Privacy:    NewPrivacyRepo(storage.Namespace(store, privacyNamespace), logger),
	}
}
