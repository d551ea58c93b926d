package scheduler

import "time"

// Gene: 表示对某个班次的排班决策
type Gene struct {
	shiftID      string
	start        time.Time
	end          time.Time
	employeeIDs  []int64 // 如果 employeeIDs 为空，则表示这个班次没有排到人
	requiredNum  int
	workDuration float64
}

// Chromosome: 整个周班表
type Chromosome struct {
	genes   []*Gene
	fitness float64
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量
	FairnessWeight float64 // 公平性权重
	OverlapWeight  float64 // 时间冲突惩罚权重
}

// DefaultParameters 是够用的默认参数，一家小店的班表规模不需要调参
func DefaultParameters() *Parameters {
	return &Parameters{
		PopulationSize: 60,
		MaxGenerations: 200,
		CrossoverRate:  0.8,
		MutationRate:   0.05,
		EliteCount:     4,
		FairnessWeight: 0.5,
		OverlapWeight:  10,
	}
}

// Assignment 是自动排班的输出，按班次给出推荐的员工列表
type Assignment struct {
	ShiftID     string  `json:"shiftID"`
	EmployeeIDs []int64 `json:"employeeIDs"`
}
