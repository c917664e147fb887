package cli

// Export internal functions for testing.

// RunConfigSet exports runConfigSet for testing.
var RunConfigSet = runConfigSet

// RunConfigGet exports runConfigGet for testing.
var RunConfigGet = runConfigGet

// RunConfigList exports runConfigList for testing.
var RunConfigList = runConfigList

// ResolveConfig exports resolveConfig for testing.
var ResolveConfig = resolveConfig

// ResolveBackends exports resolveBackends for testing.
var ResolveBackends = resolveBackends
