package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ogurasousui/shiftboard/internal/adapters/export/xlsx"
	"github.com/ogurasousui/shiftboard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/shiftboard/internal/core/calendar"
	"github.com/ogurasousui/shiftboard/internal/core/employee"
	"github.com/ogurasousui/shiftboard/internal/core/shift"
	"github.com/ogurasousui/shiftboard/internal/platform/config"
	pg "github.com/ogurasousui/shiftboard/internal/platform/db/postgres"
	"github.com/ogurasousui/shiftboard/internal/platform/logger"
)

const pageSize = 200

type employeeLister interface {
	List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error)
}

type shiftLister interface {
	ListRange(ctx context.Context, filter shift.RangeFilter) ([]*shift.Shift, error)
}

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		week       = flag.String("week", "", "any date in the week to export, YYYY-MM-DD (defaults to the current week)")
		out        = flag.String("out", "", "output file (defaults to schedule-<week start>.xlsx)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	appLogger := logger.New(cfg.Log.Level, cfg.Log.Format)
	cal := calendar.New(cfg.Business.Location)

	weekStart, err := resolveWeek(cal, *week, time.Now())
	if err != nil {
		log.Fatalf("invalid -week: %v", err)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to initialize database pool: %v", err)
	}
	defer dbPool.Close()

	tenant, err := postgres.NewCompanyRepository(dbPool).FindByCode(ctx, cfg.Business.CompanyCode)
	if err != nil {
		log.Fatalf("failed to resolve tenant company: %v", err)
	}

	schedule, err := collect(ctx, cal, postgres.NewEmployeeRepository(dbPool), postgres.NewShiftRepository(dbPool), tenant.ID, weekStart)
	if err != nil {
		log.Fatalf("failed to load schedule: %v", err)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("schedule-%s.xlsx", weekStart.Format(calendar.DateLayout))
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("failed to create %s: %v", path, err)
	}
	if err := xlsx.WriteWeek(f, cal, *schedule); err != nil {
		f.Close()
		log.Fatalf("failed to write schedule: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("failed to close %s: %v", path, err)
	}

	appLogger.Info("schedule exported",
		slog.String("path", path),
		slog.String("week_start", weekStart.Format(calendar.DateLayout)),
		slog.Int("employees", len(schedule.Employees)),
		slog.Int("shifts", len(schedule.Shifts)),
	)
}

// resolveWeek は -week の値を日曜始まりの週の開始日にします。空の場合は now を含む週です。
func resolveWeek(cal *calendar.Calendar, raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return calendar.WeekStart(cal.DateOf(now)), nil
	}
	date, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return calendar.WeekStart(date), nil
}

func collect(ctx context.Context, cal *calendar.Calendar, employees employeeLister, shifts shiftLister, companyID string, weekStart time.Time) (*xlsx.WeekSchedule, error) {
	schedule := &xlsx.WeekSchedule{WeekStart: weekStart}

	offset := 0
	for {
		page, next, err := employees.List(ctx, employee.ListEmployeesFilter{
			CompanyID:  companyID,
			ActiveOnly: true,
			Limit:      pageSize,
			Offset:     offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		schedule.Employees = append(schedule.Employees, page...)
		if next == "" {
			break
		}
		if offset, err = strconv.Atoi(next); err != nil {
			return nil, fmt.Errorf("list employees: invalid page token %q: %w", next, err)
		}
	}

	list, err := shifts.ListRange(ctx, shift.RangeFilter{
		CompanyID: companyID,
		From:      cal.DayStart(weekStart),
		To:        cal.DayStart(weekStart.AddDate(0, 0, 7)),
		Statuses:  []shift.Status{shift.StatusPlanned, shift.StatusCompleted},
	})
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	schedule.Shifts = list

	return schedule, nil
}
