package sqlite

import "time"

var nowUnix = func() int64 { return time.Now().Unix() }
