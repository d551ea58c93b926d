package scheduler

import (
	"math"
	"math/rand"
	"slices"

	"github.com/xingye-dev/store-roster/backend/internal/schedule"
)

// randomInitChromosome 随机初始化一个染色体
func (s *Scheduler) randomInitChromosome() *Chromosome {
	var genes []*Gene

	for _, shift := range s.shifts {
		// 候选就是所有在职员工，打乱后取需要的人数
		candidateIDs := make([]int64, 0, len(s.employees))
		for _, employee := range s.employees {
			candidateIDs = append(candidateIDs, employee.ID)
		}
		rand.Shuffle(len(candidateIDs), func(i, j int) {
			candidateIDs[i], candidateIDs[j] = candidateIDs[j], candidateIDs[i]
		})

		chosenNum := min(shift.RequiredStaff, len(candidateIDs))
		chosenIDs := make([]int64, chosenNum)
		copy(chosenIDs, candidateIDs[:chosenNum])

		// 计算工作时长
		workDuration, err := schedule.DurationHours(shift.Start, shift.End)
		if err != nil {
			workDuration = 0
		}

		// 生成基因
		genes = append(genes, &Gene{
			shiftID:      shift.ID,
			start:        shift.Start,
			end:          shift.End,
			employeeIDs:  chosenIDs,
			requiredNum:  shift.RequiredStaff,
			workDuration: workDuration,
		})
	}

	return &Chromosome{
		genes: genes,
	}
}

/**
 * 计算染色体的适应度
 * fitness = - notWorkPenalty - FairnessWeight * fairnessPenalty - OverlapWeight * overlapPenalty
 * 其中:
 * 		1. notWorkPenalty 为未工作惩罚（用于确保每个员工都尽可能排到班）
 * 		2. fairnessPenalty 为公平性惩罚（用于确保每个员工的工时尽可能均衡）
 * 		3. overlapPenalty 为时间冲突惩罚（同一个员工被排进两个时间重叠的班次）
 * 		4. 各权重由输入参数决定
 */
func (s *Scheduler) calcFitness(ch *Chromosome) {

	// 计算每个员工的工作时长
	employeeWorkCnt := make(map[int64]float64, len(s.employees))
	for _, employee := range s.employees {
		employeeWorkCnt[employee.ID] = 0
	}

	for _, gene := range ch.genes {
		for _, employeeID := range gene.employeeIDs {
			employeeWorkCnt[employeeID] += gene.workDuration
		}
	}

	// 计算 notWorkPenalty
	notWorkPenalty := 0.0
	for _, workCnt := range employeeWorkCnt {
		if workCnt == 0 {
			notWorkPenalty += 1
		}
	}

	// 计算 fairnessPenalty（即方差）
	variance := 0.0
	avgWorkCnt := 0.0

	for _, workCnt := range employeeWorkCnt {
		avgWorkCnt += workCnt
	}
	avgWorkCnt /= float64(len(employeeWorkCnt))

	for _, workCnt := range employeeWorkCnt {
		variance += math.Pow(workCnt-avgWorkCnt, 2)
	}
	variance /= float64(len(employeeWorkCnt))

	// 计算 overlapPenalty
	overlapPenalty := 0.0
	for i := 0; i < len(ch.genes); i++ {
		for j := i + 1; j < len(ch.genes); j++ {
			if !schedule.Overlaps(ch.genes[i].start, ch.genes[i].end, ch.genes[j].start, ch.genes[j].end) {
				continue
			}
			for _, employeeID := range ch.genes[i].employeeIDs {
				if slices.Contains(ch.genes[j].employeeIDs, employeeID) {
					overlapPenalty += 1
				}
			}
		}
	}

	// 计算 fitness 并赋值给染色体
	fitness := -notWorkPenalty - s.parameters.FairnessWeight*variance - s.parameters.OverlapWeight*overlapPenalty
	ch.fitness = fitness
}

// 使用轮盘赌来进行选择
// fitness 都是负数，先平移到正区间再按比例选择
func (s *Scheduler) selectByRoulette(pop []*Chromosome) *Chromosome {
	worst := pop[0].fitness
	for _, ch := range pop {
		if ch.fitness < worst {
			worst = ch.fitness
		}
	}

	sumFit := 0.0
	for _, ch := range pop {
		sumFit += ch.fitness - worst + 1
	}
	pick := rand.Float64() * sumFit
	partial := 0.0

	for _, ch := range pop {
		partial += ch.fitness - worst + 1
		if partial >= pick {
			return ch
		}
	}

	// 理论上不会运行到这个地方
	return pop[len(pop)-1]
}

// 单点交叉
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	length1 := len(ch1.genes)
	length2 := len(ch2.genes)

	if length1 != length2 {
		// 按理来说两个染色体的长度应该能保证是相等的
		// 这里只是以防万一
		return
	}

	length := length1

	// 随机选择一个位置
	point := rand.Intn(length)

	// 交换两个染色体在 point 位置之后的基因
	for i := point; i < length; i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异
// 随机把基因里的某个员工换成不在这个班次里的员工
func (s *Scheduler) mutate(ch *Chromosome) {
	for i := range ch.genes {
		for j := range ch.genes[i].employeeIDs {
			// 每个位置都有一定概率被替换
			if rand.Float64() > s.parameters.MutationRate {
				continue
			}

			var candidateIDs []int64
			for _, employee := range s.employees {
				if slices.Contains(ch.genes[i].employeeIDs, employee.ID) {
					// 如果这个员工已经被排到这个班次中了，那么就不要把他放入候选了
					continue
				}
				candidateIDs = append(candidateIDs, employee.ID)
			}

			if len(candidateIDs) > 0 {
				ch.genes[i].employeeIDs[j] = candidateIDs[rand.Intn(len(candidateIDs))]
			}
		}
	}
}
