package mastodon

import logx "reblograffle/pkg/logx"

func testLog() logx.Logger { return logx.Nop() }
