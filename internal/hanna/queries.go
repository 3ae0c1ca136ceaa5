package hanna

// envelope is the fixed GraphQL request shape used by both endpoints.
type envelope struct {
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
	Query         string         `json:"query"`
}

// Controller model families the Devices query is filtered to.
var modelGroups = []string{"BL12x", "BL13x", "BL13xs"}

// Query texts are verbatim copies of what the hannacloud.com web client
// sends. The server is picky about them, so they must not be reformatted.
const loginQuery = `query Login($email: String!, $password: String!, $userLanguage: String!, $source: String) {
                login(
                    email: $email
                    password: $password
                    language: $userLanguage
                    source: $source
                ) {
                    token
                    tokenType
                    __typename
                }
            }`

const devicesQuery = `query Devices($modelGroups: [String!], $deviceLogs: Boolean!) {
                devices(modelGroups: $modelGroups, deviceLogs: $deviceLogs) {
                    _id
                    DID
                    DM
                    modelGroup
                    DT
                    DINFO {
                        deviceName
                        deviceVersion
                        userId
                        emailId
                        assignedUsers {
                            emailId
                            __typename
                        }
                        tankId
                        tankName
                        __typename
                    }
                    parentId
                    childDevices {
                        DID
                        __typename
                    }
                    dashboardViewStatus
                    deviceOrder
                    secondaryUser
                    reportedSettings
                    status
                    lastUpdated
                    message
                    deviceName
                    batteryStatus
                    __typename
                }
            }`

const readingsQuery = `query GetLastDeviceReading($deviceIds: [String!]) {
                lastDeviceReadings(deviceIds: $deviceIds) {
                    DID
                    DT
                    messages
                    __typename
                }
            }`

func loginEnvelope(email, password string) envelope {
	return envelope{
		OperationName: "Login",
		Variables: map[string]any{
			"email":        email,
			"password":     password,
			"userLanguage": "German",
			"source":       "web",
		},
		Query: loginQuery,
	}
}

func devicesEnvelope() envelope {
	return envelope{
		OperationName: "Devices",
		Variables: map[string]any{
			"modelGroups": modelGroups,
			"deviceLogs":  true,
		},
		Query: devicesQuery,
	}
}

func readingsEnvelope(deviceIDs []string) envelope {
	return envelope{
		OperationName: "GetLastDeviceReading",
		Variables: map[string]any{
			"deviceIds": deviceIDs,
		},
		Query: readingsQuery,
	}
}
