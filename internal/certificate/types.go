package certificate

import (
	"math/big"
	"time"
)

// Request 证书上链请求
//
// FinalScore 和 TotalHours 允许带小数，但上链前会被截断为整数：
// 链上存储没有小数字段，这是业务方确认过的有损转换。
type Request struct {
	CertificateNumber string // 业务唯一编号
	StudentName       string
	StudentWallet     string // 学生钱包地址，允许为占位符（非法地址按零地址处理）
	CourseTitle       string
	Instructor        string
	CompletedAt       time.Time
	Grade             string
	FinalScore        float64
	TotalHours        float64
	TotalLessons      uint64
}

// Outcome 上链成功后的结果
// 只在观察到已挖出的回执后构造，绝不预先填充
type Outcome struct {
	TxHash      string
	BlockNumber uint64
	GasUsed     uint64
	Cost        *big.Int // gasUsed × 实际每单位费用（wei）
	ConfirmedAt time.Time
}

// Verification 证书查询结果
type Verification struct {
	Found       bool
	StudentName string
	CourseTitle string
	Instructor  string
	CompletedAt time.Time
	Grade       string
	FinalScore  int64
}
