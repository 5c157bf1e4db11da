package badger

// BadgerDB存储默认配置值
const (
	// defaultPath 默认数据库路径
	defaultPath = "./data/badger"

	// defaultSyncWrites 证明记录写入即落盘
	defaultSyncWrites = true

	// defaultMemTableSize 内存表大小 16MB，证明记录体积很小
	defaultMemTableSize = 16 << 20
)
