package entity

import "time"

// Типы сущностей в журнале аудита
const (
	EntityTask     = "TASK"
	EntityUser     = "USER"
	EntityEmployee = "EMPLOYEE"
	EntityFile     = "FILE"
)

// Действия в журнале аудита
const (
	ActionListTasks            = "LIST_TASKS"
	ActionGetTask              = "GET_TASK"
	ActionCreateTask           = "CREATE_TASK"
	ActionAssignTask           = "ASSIGN_TASK"
	ActionPatchTask            = "PATCH_TASK"
	ActionChangeTaskStatus     = "CHANGE_TASK_STATUS"
	ActionDeleteTask           = "DELETE_TASK"
	ActionGetAllUsers          = "GET_ALL_USERS"
	ActionGetUser              = "GET_USER"
	ActionCreateUser           = "CREATE_USER"
	ActionUpdateUser           = "UPDATE_USER"
	ActionDeleteUser           = "DELETE_USER"
	ActionCreateEmployee       = "CREATE_EMPLOYEE"
	ActionGetAllEmployees      = "GET_ALL_EMPLOYEES"
	ActionGetEmployee          = "GET_EMPLOYEE"
	ActionGetMyEmployees       = "GET_MY_EMPLOYEES"
	ActionUpdateEmployee       = "UPDATE_EMPLOYEE"
	ActionDeleteEmployee       = "DELETE_EMPLOYEE"
	ActionUploadProfilePicture = "UPLOAD_PROFILE_PICTURE"
	ActionCreateRemark         = "CREATE_REMARK"
	ActionCreateRemarkWithFile = "CREATE_REMARK_WITH_FILE"
	ActionListRemarks          = "LIST_REMARKS"
	ActionUpdateRemark         = "UPDATE_REMARK"
	ActionDeleteRemark         = "DELETE_REMARK"
	ActionDownloadFile         = "DOWNLOAD_FILE"
	ActionChangePassword       = "CHANGE_PASSWORD"
	ActionResetPassword        = "RESET_PASSWORD"
)

// SystemActor - performed_by для действий без пользователя
const SystemActor = 0

// AuditLog - запись журнала действий, только на запись
type AuditLog struct {
	Action      string    `json:"action" bson:"action"`
	EntityType  string    `json:"entity_type" bson:"entity_type"`
	EntityID    int       `json:"entity_id" bson:"entity_id"`
	PerformedBy int       `json:"performed_by" bson:"performed_by"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}
