package runs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-oasis/balance-planner/backend/internal/config"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/optimizer"
	"github.com/sysu-oasis/balance-planner/backend/internal/repository"
)

// Registry 管理进程内正在执行的优化运行
// 每次运行独占自己的种群和状态，不同运行之间不存在共享可变状态
type Registry struct {
	cfg         *config.Config
	repo        *repository.Repository
	redisClient *redis.Client
	mailChannel *amqp.Channel

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
}

func NewRegistry(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, mailCh *amqp.Channel) *Registry {
	return &Registry{
		cfg:         cfg,
		repo:        repo,
		redisClient: rdb,
		mailChannel: mailCh,
		cancels:     make(map[int64]context.CancelFunc),
	}
}

// Start 校验配置并启动一次优化运行
// 校验失败时同步返回错误，运行不会开始；校验通过后立即返回运行记录，优化在后台进行
func (g *Registry) Start(plan *domain.Plan, owner *domain.User, params *optimizer.Parameters, seed int64) (*domain.OptimizationRun, error) {
	rng := rand.New(rand.NewSource(seed))

	opt, err := optimizer.New(params, plan, g.cfg.ShiftCatalog(), rng)
	if err != nil {
		return nil, err
	}

	run := &domain.OptimizationRun{
		PlanID: plan.ID,
		Status: domain.RunStatusRunning,
		Seed:   seed,
	}
	if err := g.repo.CreateRun(run); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	g.mu.Lock()
	g.cancels[run.ID] = cancel
	g.mu.Unlock()

	progress := make(chan optimizer.Progress, 1)

	// 进度镜像：把优化器发布的快照写到 redis 供轮询，写不及时的快照被丢弃也没有关系
	go func() {
		for p := range progress {
			g.storeProgress(run.ID, p)
		}
	}()

	go func() {
		defer func() {
			g.mu.Lock()
			delete(g.cancels, run.ID)
			g.mu.Unlock()
			cancel()
		}()

		result, runErr := opt.Run(ctx, progress)
		close(progress)

		// Start 返回的运行记录已经交给了调用方，本协程不能再写它，
		// 终态字段只写在自己的副本上
		finished := finishedRun(run, result, runErr)

		// 终态结果必须落库，进度快照可以丢，终态不能丢
		if err := g.repo.FinishRun(finished); err != nil {
			slog.Error("无法保存优化运行结果", "runID", finished.ID, "error", err)
			return
		}

		if err := g.publishRunFinishedMail(plan, owner, finished); err != nil {
			slog.Error("无法发送运行结束通知邮件", "runID", finished.ID, "error", err)
		}

		slog.Info("优化运行结束",
			"runID", finished.ID,
			"status", finished.Status,
			"bestFitness", finished.BestFitness,
			"generations", finished.GenerationsRun,
			"elapsedMs", finished.ElapsedMs,
		)
	}()

	return run, nil
}

// finishedRun 把优化结果合并成一条新的终态运行记录，不修改传入的记录
func finishedRun(run *domain.OptimizationRun, result *optimizer.Result, runErr error) *domain.OptimizationRun {
	finished := *run
	finished.Status = domain.RunStatus(result.Status)
	finished.BestFitness = result.BestFitness
	finished.FinalBalance = result.FinalBalance
	finished.WorkDaysCount = result.WorkDaysCount
	finished.Violations = result.Violations
	finished.GenerationsRun = result.GenerationsRun
	finished.ElapsedMs = result.ElapsedMs
	finished.IsCrisisMode = result.IsCrisisMode
	finished.Schedule = result.BestSchedule
	if runErr != nil {
		finished.ErrorMessage = runErr.Error()
	}
	return &finished
}

// Cancel 请求取消某次运行，幂等：运行已结束时什么都不做
func (g *Registry) Cancel(runID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	cancel, exists := g.cancels[runID]
	if !exists {
		return false
	}
	cancel()
	return true
}

// Progress 返回某次运行最近一次的进度快照，没有快照时返回 nil
func (g *Registry) Progress(ctx context.Context, runID int64) (*domain.RunProgress, error) {
	data, err := g.redisClient.Get(ctx, progressKey(runID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	p := &domain.RunProgress{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (g *Registry) storeProgress(runID int64, p optimizer.Progress) {
	snapshot := domain.RunProgress{
		Generation:    p.Generation,
		BestFitness:   p.BestFitness,
		Violations:    p.Violations,
		WorkDaysCount: p.WorkDaysCount,
		IsCrisisMode:  p.IsCrisisMode,
		UpdatedAt:     time.Now(),
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("无法序列化进度快照", "runID", runID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(g.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	expiration := time.Duration(g.cfg.Runs.ProgressExpiration) * time.Second
	if err := g.redisClient.Set(ctx, progressKey(runID), data, expiration).Err(); err != nil {
		slog.Error("无法写入进度快照", "runID", runID, "error", err)
	}
}

func (g *Registry) publishRunFinishedMail(plan *domain.Plan, owner *domain.User, run *domain.OptimizationRun) error {
	mailMessage := domain.MailMessage{
		Type: "run_finished",
		To:   owner.Email,
		Data: domain.RunFinishedMailData{
			FullName:       owner.FullName,
			PlanName:       plan.Name,
			Status:         string(run.Status),
			FinalBalance:   run.FinalBalance,
			WorkDaysCount:  run.WorkDaysCount,
			Violations:     run.Violations,
			GenerationsRun: run.GenerationsRun,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(g.cfg.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	return g.mailChannel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	)
}

func progressKey(runID int64) string {
	return fmt.Sprintf("run_%d_progress", runID)
}
