package certificate

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// registryABIJSON 证书登记合约的外部调用契约
// 本仓库只消费合约的 ABI，不包含合约源码
const registryABIJSON = `[
	{
		"name": "issueCertificate",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "certificateNumber", "type": "string"},
			{"name": "studentName", "type": "string"},
			{"name": "studentWallet", "type": "address"},
			{"name": "courseTitle", "type": "string"},
			{"name": "instructor", "type": "string"},
			{"name": "completedAt", "type": "uint256"},
			{"name": "grade", "type": "string"},
			{"name": "finalScore", "type": "uint256"},
			{"name": "totalHours", "type": "uint256"},
			{"name": "totalLessons", "type": "uint256"}
		],
		"outputs": [
			{"name": "recordId", "type": "uint256"}
		]
	},
	{
		"name": "getCertificate",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "certificateNumber", "type": "string"}
		],
		"outputs": [
			{"name": "exists", "type": "bool"},
			{"name": "studentName", "type": "string"},
			{"name": "courseTitle", "type": "string"},
			{"name": "instructor", "type": "string"},
			{"name": "completedAt", "type": "uint256"},
			{"name": "grade", "type": "string"},
			{"name": "finalScore", "type": "uint256"}
		]
	}
]`

var registryABI = mustParseRegistryABI()

func mustParseRegistryABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(registryABIJSON))
	if err != nil {
		panic(err)
	}
	return parsed
}
