package apierrors

const (
	MsgInvalidTaskID      = "invalidTaskID"
	MsgInvalidTaskPayload = "invalidTaskPayload"
	MsgTitleRequired      = "titleRequired"
	MsgTitleTooLong       = "titleTooLong"
	MsgInvalidPriority    = "invalidPriority"
	MsgInvalidCategory    = "invalidCategory"
	MsgInvalidStatus      = "invalidStatus"
	MsgKeywordRequired    = "keywordRequired"
	MsgInvalidDate        = "invalidDate"
	MsgInvalidDateRange   = "invalidDateRange"
	MsgTaskNotFound       = "taskNotFound"
	MsgFailListTask       = "errorListTask"
	MsgFailGetTask        = "failGetTask"
	MsgFailCreateTask     = "failCreateTask"
	MsgFailUpdateTask     = "failUpdateTask"
	MsgFailDeleteTask     = "failDeleteTask"
	MsgFailRestoreTask    = "failRestoreTask"
	MsgFailListSubtasks   = "failListSubtasks"
	MsgRequestTimeout     = "requestTimeout"
	MsgInternalError      = "internalError"
)
