package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Пауза между двумя проходами, за которую накапливается дельта
// процессорного времени для осмысленного cpu_percent
const settleDelay = 100 * time.Millisecond

// procHandle абстрагирует один живой процесс; в тестах подменяется фейком
type procHandle interface {
	PID() int32
	Name() (string, error)
	CPUPercent() (float64, error)
	RSSBytes() (uint64, error)
}

type gopsutilProc struct {
	p *process.Process
}

func (g gopsutilProc) PID() int32 { return g.p.Pid }

func (g gopsutilProc) Name() (string, error) { return g.p.Name() }

// CPUPercent у gopsutil считает загрузку с момента предыдущего вызова на
// том же хендле, поэтому второй проход обязан опрашивать хендлы первого
func (g gopsutilProc) CPUPercent() (float64, error) { return g.p.CPUPercent() }

func (g gopsutilProc) RSSBytes() (uint64, error) {
	mi, err := g.p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	if mi == nil {
		return 0, fmt.Errorf("no memory info")
	}
	return mi.RSS, nil
}

func listGopsutil(ctx context.Context) ([]procHandle, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	handles := make([]procHandle, 0, len(procs))
	for _, p := range procs {
		handles = append(handles, gopsutilProc{p: p})
	}
	return handles, nil
}

// Ranker строит топ-N процессов по потреблению CPU двумя проходами по
// таблице процессов: первый проход фиксирует кандидатов и «заряжает»
// счетчик CPU, второй после короткой паузы снимает дельту.
type Ranker struct {
	logger *zap.Logger
	settle time.Duration
	list   func(ctx context.Context) ([]procHandle, error)
}

// NewRanker создает новый ранжировщик процессов
func NewRanker(logger *zap.Logger) *Ranker {
	return &Ranker{
		logger: logger,
		settle: settleDelay,
		list:   listGopsutil,
	}
}

type candidate struct {
	handle procHandle
	sample ProcessSample
}

// Top возвращает первые n процессов, отсортированных по убыванию
// (cpu_percent, rss_bytes). Ошибки чтения отдельных процессов глотаются:
// такой процесс просто выпадает из ранжирования.
func (r *Ranker) Top(ctx context.Context, n int) ([]ProcessSample, error) {
	first, err := r.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	// Первый проход: имя, память и первичный опрос CPU.
	// Состав кандидатов фиксируется здесь.
	order := make([]int32, 0, len(first))
	candidates := make(map[int32]*candidate, len(first))
	for _, h := range first {
		name, err := h.Name()
		if err != nil || name == "" {
			continue
		}
		if _, err := h.CPUPercent(); err != nil {
			continue
		}
		rss, err := h.RSSBytes()
		if err != nil {
			continue
		}
		pid := h.PID()
		order = append(order, pid)
		candidates[pid] = &candidate{
			handle: h,
			sample: ProcessSample{PID: pid, Name: name, RSSBytes: rss},
		}
	}

	// Пауза, чтобы набежала дельта процессорного времени
	select {
	case <-time.After(r.settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	// Второй проход: живы только процессы, попавшие в новое перечисление.
	// Новые pid игнорируются — кандидатов определил первый проход.
	second, err := r.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to relist processes: %w", err)
	}
	alive := make(map[int32]procHandle, len(second))
	for _, h := range second {
		alive[h.PID()] = h
	}

	samples := make([]ProcessSample, 0, len(order))
	for _, pid := range order {
		cand := candidates[pid]
		fresh, ok := alive[pid]
		if !ok {
			continue
		}
		pct, err := cand.handle.CPUPercent()
		if err != nil {
			continue
		}
		cand.sample.CPUPercent = pct
		if rss, err := fresh.RSSBytes(); err == nil {
			cand.sample.RSSBytes = rss
		}
		samples = append(samples, cand.sample)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].CPUPercent != samples[j].CPUPercent {
			return samples[i].CPUPercent > samples[j].CPUPercent
		}
		return samples[i].RSSBytes > samples[j].RSSBytes
	})

	if n > 0 && len(samples) > n {
		samples = samples[:n]
	}

	r.logger.Debug("Process ranking completed",
		zap.Int("candidates", len(order)),
		zap.Int("ranked", len(samples)))

	return samples, nil
}
