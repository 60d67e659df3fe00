package sqllog

import (
	log "github.com/sirupsen/logrus"
)

// Field keys inspected by Hook.
const (
	SQLField    = "sql"
	ParamsField = "params"
)

// Hook returns a logrus.Hook which records every log entry that carries a
// SQLField, such as those written by ExecStatements. A ParamsField holding
// []Parameter is recorded as the statement's parameters.
//
// logrus fires hooks only for enabled levels. Use CaptureLogger to install
// the hook with statement entries guaranteed to be enabled.
func (r *Recorder) Hook() log.Hook { return &recorderHook{r: r} }

// CaptureLogger adds Hook to `logger`, raising its level to at least Info so
// that ExecStatements entries fire. The returned func removes the hook and
// restores the prior level.
func (r *Recorder) CaptureLogger(logger *log.Logger) (release func()) {
	var prevLevel = logger.GetLevel()
	var prevHooks = logger.ReplaceHooks(make(log.LevelHooks))
	var hooks = make(log.LevelHooks)
	for level, h := range prevHooks {
		hooks[level] = append([]log.Hook(nil), h...)
	}
	logger.ReplaceHooks(hooks)

	if !logger.IsLevelEnabled(log.InfoLevel) {
		logger.SetLevel(log.InfoLevel)
	}
	logger.AddHook(r.Hook())

	return func() {
		logger.ReplaceHooks(prevHooks)
		logger.SetLevel(prevLevel)
	}
}

type recorderHook struct{ r *Recorder }

func (h *recorderHook) Levels() []log.Level { return log.AllLevels }

func (h *recorderHook) Fire(entry *log.Entry) error {
	sql, ok := entry.Data[SQLField].(string)
	if !ok {
		return nil
	}
	var params, _ = entry.Data[ParamsField].([]Parameter)
	h.r.Record(NewStatement(sql, params...))
	return nil
}
