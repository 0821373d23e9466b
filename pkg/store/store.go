// Package store implements AuditStore: GORM/MySQL persistence for audit
// records, grounded on the teacher's database handle plugin
// (plugins/handle/database/postages/plugin.go) — same create-database-if-
// not-exists bootstrap, same gormLogger slow-query config, same DSN
// builder shape, generalized from DetectorRecord to AuditRecord.
package store

import (
	"encoding/json"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/pkg/audit"
)

// Config mirrors the teacher's DatabaseConfig shape.
type Config struct {
	Host         string
	Port         string
	Username     string
	Password     string
	DatabaseName string
	Charset      string
}

func (c Config) withDefaults() Config {
	if c.DatabaseName == "" {
		c.DatabaseName = "adaudit"
	}
	if c.Charset == "" {
		c.Charset = "utf8mb4"
	}
	return c
}

func buildDSN(cfg Config, includeDB bool) string {
	dbPart := "/"
	if includeDB {
		dbPart = "/" + cfg.DatabaseName
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)%s?charset=%s&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, dbPart, cfg.Charset)
}

// auditRecordRow is the GORM model backing AuditRecord persistence.
type auditRecordRow struct {
	ID            string `gorm:"primaryKey"`
	UserID        string
	ContentType   string
	OriginalInput string `gorm:"type:text"`
	ExtractedText string `gorm:"type:longtext"`
	Transcript    string `gorm:"type:longtext"`
	ReportJSON    string `gorm:"type:longtext"`
	CreatedAt     time.Time
}

func (auditRecordRow) TableName() string { return "audit_record" }

// Store is AuditStore's GORM/MySQL implementation. A process-wide
// singleton, safe for concurrent Save/Get calls (per spec §5).
type Store struct {
	db  *gorm.DB
	log logging.Logger
}

func Open(cfg Config, log logging.Logger) (*Store, error) {
	cfg = cfg.withDefaults()
	log = log.WithField("component", "audit_store")

	gormCfg := &gorm.Config{
		Logger: gormLogger.New(
			stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
			gormLogger.Config{SlowThreshold: 3 * time.Second, LogLevel: gormLogger.Error, Colorful: false},
		),
	}

	serverDB, err := gorm.Open(mysql.Open(buildDSN(cfg, false)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to mysql server: %w", err)
	}
	createStmt := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET %s COLLATE %s_unicode_ci",
		cfg.DatabaseName, cfg.Charset, cfg.Charset)
	if err := serverDB.Exec(createStmt).Error; err != nil {
		return nil, fmt.Errorf("create database: %w", err)
	}

	db, err := gorm.Open(mysql.Open(buildDSN(cfg, true)), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := db.AutoMigrate(&auditRecordRow{}); err != nil {
		return nil, fmt.Errorf("auto-migrate audit_record: %w", err)
	}

	log.Info("audit store initialized", logging.Fields{"database": cfg.DatabaseName})
	return &Store{db: db, log: log}, nil
}

// Save persists an AuditRecord. Per SPEC_FULL §9's Open Question decision,
// this is synchronous but non-fatal: the pipeline logs and proceeds on
// failure rather than failing the response (spec §4.12 step 9).
func (s *Store) Save(record audit.AuditRecord) error {
	reportJSON, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	row := auditRecordRow{
		ID:            record.ID,
		UserID:        record.UserID,
		ContentType:   string(record.ContentType),
		OriginalInput: record.OriginalInput,
		ExtractedText: record.ExtractedText,
		Transcript:    record.Transcript,
		ReportJSON:    string(reportJSON),
		CreatedAt:     record.CreatedAt,
	}

	if err := s.db.Create(&row).Error; err != nil {
		s.log.Error("failed to persist audit record", logging.Fields{"error": err.Error(), "id": record.ID})
		return err
	}
	return nil
}

// Get retrieves a single audit record by id.
func (s *Store) Get(id string) (audit.AuditRecord, error) {
	var row auditRecordRow
	if err := s.db.Where("id = ?", id).First(&row).Error; err != nil {
		return audit.AuditRecord{}, err
	}
	return s.toRecord(row)
}

// History returns the most recent records, newest first.
func (s *Store) History(limit, skip int) ([]audit.AuditRecord, error) {
	var rows []auditRecordRow
	query := s.db.Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if skip > 0 {
		query = query.Offset(skip)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]audit.AuditRecord, 0, len(rows))
	for _, row := range rows {
		record, err := s.toRecord(row)
		if err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *Store) toRecord(row auditRecordRow) (audit.AuditRecord, error) {
	var report audit.Report
	if err := json.Unmarshal([]byte(row.ReportJSON), &report); err != nil {
		return audit.AuditRecord{}, fmt.Errorf("unmarshal stored report: %w", err)
	}
	return audit.AuditRecord{
		ID:            row.ID,
		UserID:        row.UserID,
		ContentType:   audit.ContentType(row.ContentType),
		OriginalInput: row.OriginalInput,
		ExtractedText: row.ExtractedText,
		Transcript:    row.Transcript,
		Report:        report,
		CreatedAt:     row.CreatedAt,
	}, nil
}
