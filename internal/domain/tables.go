package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOprLog{},
	&User{},
	// Commercial
	&Client{},
	&Product{},
	&Order{},
	&OrderProduct{},
}
