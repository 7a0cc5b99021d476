package events

// Contract lifecycle event types published by the contract service and
// consumed by the audit-log subscriber.
const (
	ContractCreated        = "contract.created"
	ContractEnded          = "contract.ended"
	ContractVersionCreated = "contract.version.created"
	ContractVersionUpdated = "contract.version.updated"
	ContractVersionDeleted = "contract.version.deleted"
	ContractDeleted        = "contract.deleted"
	SignatureCompleted     = "contract.signature.completed"
)
