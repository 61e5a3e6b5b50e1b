// Package dinox is a client for the DINO-X asynchronous task API and the
// detection pipeline built on top of it.
//
// # Task Protocol
//
// Every backend operation is a task:
//
//	POST task/{endpoint}        -> {"code":0,"msg":"ok","data":{"task_uuid":"..."}}
//	GET  task_status/{uuid}     -> {"data":{"status":"running"}}
//	                            -> {"data":{"status":"success","result":{...}}}
//	                            -> {"data":{"status":"failed","error":"..."}}
//
// Client.Submit creates the task and polls it at most MaxPollAttempts times,
// PollInterval apart, which caps the wait for one task at about a minute.
// The limits are fixed; tests substitute the Sleeper instead.
//
// # Pipeline
//
// Pipeline offers three detections (by text prompt, universal, human pose)
// sharing one template. When a description is requested and at least one
// object was found, a second region_vl task captions each detected box and
// the captions are joined back by index.
package dinox
