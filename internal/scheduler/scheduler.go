package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"sort"

	"github.com/xingye-dev/store-roster/backend/internal/domain"
	"github.com/xingye-dev/store-roster/backend/internal/schedule"
)

type Scheduler struct {
	parameters *Parameters
	employees  []*domain.Employee // 注意这个不是所有的 employees，而是可以被排班的在职员工
	shifts     []*domain.Shift
}

func New(parameters *Parameters, employees []*domain.Employee, shifts []*domain.Shift) (*Scheduler, error) {
	s := &Scheduler{
		parameters: parameters,
		employees:  make([]*domain.Employee, 0, len(employees)),
		shifts:     shifts,
	}

	for _, employee := range employees {
		if isSchedulable(employee) {
			s.employees = append(s.employees, employee)
		}
	}

	if len(s.employees) == 0 {
		return nil, errors.New("没有可以排班的在职员工")
	}
	if len(shifts) == 0 {
		return nil, errors.New("没有需要排班的班次")
	}

	return s, nil
}

func (s *Scheduler) Schedule() ([]*Assignment, error) {
	// 生成初始种群
	pop := make([]*Chromosome, s.parameters.PopulationSize)
	for i := 0; i < int(s.parameters.PopulationSize); i++ {
		pop[i] = s.randomInitChromosome()
		s.calcFitness(pop[i])
	}

	// 迭代
	bestChromosomeEver := &Chromosome{
		genes:   nil,
		fitness: -math.MaxFloat64,
	}

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		// 找到本代最佳样本
		genBestFit := pop[0].fitness
		genBestIndex := 0

		for i := 1; i < int(s.parameters.PopulationSize); i++ {
			if pop[i].fitness > genBestFit {
				genBestFit = pop[i].fitness
				genBestIndex = i
			}
		}

		if genBestFit > bestChromosomeEver.fitness {
			bestChromosomeEver.fitness = genBestFit
			// 这里需要使用深拷贝，防止后续繁殖的过程中导致指向的基因被修改
			bestChromosomeEver.genes = make([]*Gene, len(pop[genBestIndex].genes))
			for i := 0; i < len(pop[genBestIndex].genes); i++ {
				bestChromosomeEver.genes[i] = &Gene{
					shiftID:      pop[genBestIndex].genes[i].shiftID,
					start:        pop[genBestIndex].genes[i].start,
					end:          pop[genBestIndex].genes[i].end,
					employeeIDs:  make([]int64, len(pop[genBestIndex].genes[i].employeeIDs)),
					requiredNum:  pop[genBestIndex].genes[i].requiredNum,
					workDuration: pop[genBestIndex].genes[i].workDuration,
				}
				copy(bestChromosomeEver.genes[i].employeeIDs, pop[genBestIndex].genes[i].employeeIDs)
			}
		}

		// 繁殖
		newPop := make([]*Chromosome, 0, s.parameters.PopulationSize)

		// 保留精英
		sort.Slice(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		newPop = append(newPop, pop[:int(s.parameters.EliteCount)]...)

		// 在剩余的染色体中进行交叉和变异
		for len(newPop) < int(s.parameters.PopulationSize) {
			// 选择两个父本
			p1 := s.selectByRoulette(pop)
			p2 := s.selectByRoulette(pop)

			if rand.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)

			if len(newPop) < int(s.parameters.PopulationSize) {
				newPop = append(newPop, p2)
			}
		}

		for i := 0; i < int(s.parameters.PopulationSize); i++ {
			pop[i] = newPop[i]
			s.calcFitness(pop[i])
		}
	}

	// 返回结果
	result := make([]*Assignment, 0, len(bestChromosomeEver.genes))
	for _, gene := range bestChromosomeEver.genes {
		// 最后再检查一遍基因内没有重复的员工
		seen := make(map[int64]bool, len(gene.employeeIDs))
		for _, id := range gene.employeeIDs {
			if seen[id] {
				return nil, schedule.ErrDuplicateAssignment
			}
			seen[id] = true
		}

		result = append(result, &Assignment{
			ShiftID:     gene.shiftID,
			EmployeeIDs: gene.employeeIDs,
		})
	}

	return result, nil
}
