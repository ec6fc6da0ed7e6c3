package app

const TopicAccountCreated = "account:created"
const TopicAccountRegistered = "account:registered"
const TopicAuthLogin = "auth:login"
const TopicAuthLogout = "auth:logout"
const TopicAuditLoginSuccess = "audit:login:success"
const TopicAuditLoginFailed = "audit:login:failed"
const TopicAuditLogout = "audit:logout"
